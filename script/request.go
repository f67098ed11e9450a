package script

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/clbanning/mxj/v2"
	"github.com/mauritsl/restapir"
	"github.com/sethvargo/go-retry"
)

// runRequest performs the request substep's outbound HTTP call, retrying
// transient failures, and returns {headers, body, cookies} with body
// decoded per its response content-type (JSON/XML to an object, anything
// else left as a raw string).
func (r *Runtime) runRequest(ctx context.Context, req *RequestSubstep, state map[string]any) (map[string]any, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyBytes []byte
	if req.Body != nil {
		encoded, err := r.evalTransform(req.Body, state)
		if err != nil {
			return nil, err
		}
		switch v := encoded.(type) {
		case string:
			bodyBytes = []byte(v)
		case nil:
			bodyBytes = nil
		default:
			data, err := restapir.DefaultMarshaler.Marshal(v)
			if err != nil {
				return nil, restapir.Newf(restapir.InvalidOperatorArgument, "script: encoding request body: %v", err)
			}
			bodyBytes = data
		}
	}

	var resp *http.Response
	err := restapir.Retry(ctx, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(bodyBytes))
		if err != nil {
			return err
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}
		res, err := http.DefaultClient.Do(httpReq)
		if err != nil {
			if restapir.ShouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if restapir.RetryableStatus(res.StatusCode) {
			res.Body.Close()
			return retry.RetryableError(errRetryableStatus)
		}
		resp = res
		return nil
	}, nil)
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "script: request to %s failed: %v", req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "script: reading response body: %v", err)
	}

	body := decodeResponseBody(resp.Header.Get("Content-Type"), raw)

	headers := map[string]any{}
	for k, v := range resp.Header {
		if len(v) == 1 {
			headers[k] = v[0]
		} else {
			headers[k] = v
		}
	}

	cookies := map[string]any{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}

	return map[string]any{
		"headers": headers,
		"body":    body,
		"cookies": cookies,
	}, nil
}

func decodeResponseBody(contentType string, raw []byte) any {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.Contains(mediaType, "json"):
		var out any
		if err := restapir.DefaultMarshaler.Unmarshal(raw, &out); err == nil {
			return out
		}
	case strings.Contains(mediaType, "xml"):
		if m, err := mxj.NewMapXml(raw); err == nil {
			return map[string]any(m)
		}
	}
	return string(raw)
}

var errRetryableStatus = restapir.New(restapir.Unknown, "script: retryable response status")
