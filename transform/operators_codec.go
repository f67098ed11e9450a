package transform

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"net/url"

	"github.com/clbanning/mxj/v2"
	"github.com/mauritsl/restapir"
)

func opHash(ex *Exec, arg any, input any) (any, error) {
	var a struct {
		Algorithm string `json:"algorithm"`
		Encoding  string `json:"encoding"`
	}
	a.Algorithm = "md5"
	a.Encoding = "hex"
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}

	var data []byte
	if s, ok := input.(string); ok {
		data = []byte(s)
	} else {
		encoded, err := restapir.DefaultMarshaler.Marshal(input)
		if err != nil {
			return nil, argError("hash", "serializing non-string input: %v", err)
		}
		data = encoded
	}

	var h hash.Hash
	switch a.Algorithm {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return nil, argError("hash", "unknown algorithm %q", a.Algorithm)
	}
	h.Write(data)
	sum := h.Sum(nil)

	switch a.Encoding {
	case "hex", "":
		return hex.EncodeToString(sum), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(sum), nil
	default:
		return nil, argError("hash", "unknown encoding %q", a.Encoding)
	}
}

func opFromJSON(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("fromJson", "input must be a string")
	}
	var v any
	if err := restapir.DefaultMarshaler.Unmarshal([]byte(s), &v); err != nil {
		return nil, nil
	}
	return v, nil
}

func opToJSON(ex *Exec, arg any, input any) (any, error) {
	data, err := restapir.DefaultMarshaler.Marshal(input)
	if err != nil {
		return nil, argError("toJson", "%v", err)
	}
	return string(data), nil
}

// init switches mxj's attribute key prefix from its default "-" to "@", so
// XML attributes map to "@name" keys in both directions.
func init() {
	mxj.SetAttrPrefix("@")
}

// opFromXML parses input as XML using the engine's @attr/#text convention:
// attributes become "@name" keys and element text sits under "#text".
func opFromXML(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("fromXml", "input must be a string")
	}
	m, err := mxj.NewMapXml([]byte(s))
	if err != nil {
		return nil, nil
	}
	return map[string]any(m), nil
}

func opToXML(ex *Exec, arg any, input any) (any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, argError("toXml", "input must be a mapping")
	}
	data, err := mxj.Map(m).Xml()
	if err != nil {
		return nil, argError("toXml", "%v", err)
	}
	return string(data), nil
}

func opFromBase64(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("fromBase64", "input must be a string")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, nil
	}
	return string(data), nil
}

func opToBase64(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("toBase64", "input must be a string")
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func opToFormData(ex *Exec, arg any, input any) (any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, argError("toFormData", "input must be a mapping")
	}
	values := url.Values{}
	for k, v := range m {
		values.Set(k, stringify(v))
	}
	return values.Encode(), nil
}

func opFromFormData(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("fromFormData", "input must be a string")
	}
	values, err := url.ParseQuery(s)
	if err != nil {
		return nil, nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		arr := make([]any, len(v))
		for i, e := range v {
			arr[i] = e
		}
		out[k] = arr
	}
	return out, nil
}
