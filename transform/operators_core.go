package transform

import (
	"strings"

	"github.com/mauritsl/restapir/pointer"
)

func opGet(ex *Exec, arg any, input any) (any, error) {
	ptr, ok := arg.(string)
	if !ok {
		return nil, argError("get", "argument must be a string pointer")
	}
	return pointer.Get(input, ptr), nil
}

func opStatic(ex *Exec, arg any, input any) (any, error) {
	return arg, nil
}

// opObject builds a new mapping from spec, evaluating each value as a
// sub-transformation against the same input. Under the pointer dialect a
// non-empty string value that does not start with "/" is copied as a
// literal instead. The special key "..." spreads the subtree found at its
// pointer value into the result.
func opObject(ex *Exec, arg any, input any) (any, error) {
	spec, ok := arg.(map[string]any)
	if !ok {
		return nil, argError("object", "argument must be a mapping")
	}
	out := make(map[string]any, len(spec))
	for key, sub := range spec {
		if key == "..." {
			ptr, ok := sub.(string)
			if !ok {
				return nil, argError("object", "'...' spread value must be a pointer string")
			}
			merged := pointer.Get(input, ptr)
			m, ok := merged.(map[string]any)
			if !ok {
				continue
			}
			for k, v := range m {
				out[k] = v
			}
			continue
		}
		if s, ok := sub.(string); ok && ex.dialect == DialectPointer && s != "" && !strings.HasPrefix(s, "/") {
			out[key] = s
			continue
		}
		val, err := ex.EvalSub(sub, input)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func opMap(ex *Exec, arg any, input any) (any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, argError("map", "input must be an array")
	}
	out := make([]any, len(arr))
	for i, item := range arr {
		val, err := ex.EvalSub(arg, item)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func opArray(ex *Exec, arg any, input any) (any, error) {
	specs, ok := arg.([]any)
	if !ok {
		return nil, argError("array", "argument must be an array of sub-transformations")
	}
	out := make([]any, len(specs))
	for i, spec := range specs {
		val, err := ex.EvalSub(spec, input)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

type substringArg struct {
	Start  *int `json:"start"`
	Length *int `json:"length"`
}

func opSubstring(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("substring", "input must be a string")
	}
	var a substringArg
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	runes := []rune(s)
	start := 0
	if a.Start != nil {
		start = *a.Start
	}
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	if a.Length != nil {
		end = start + *a.Length
		if end > len(runes) {
			end = len(runes)
		}
	}
	if end < start {
		end = start
	}
	return string(runes[start:end]), nil
}

func opLength(ex *Exec, arg any, input any) (any, error) {
	switch v := input.(type) {
	case string:
		return float64(len([]rune(v))), nil
	case []any:
		return float64(len(v)), nil
	default:
		return nil, argError("length", "input must be a string or array, got %T", input)
	}
}

func opCount(ex *Exec, arg any, input any) (any, error) {
	switch v := input.(type) {
	case string:
		return float64(len([]rune(v))), nil
	case []any:
		return float64(len(v)), nil
	default:
		return float64(0), nil
	}
}

func opJoin(ex *Exec, arg any, input any) (any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, argError("join", "input must be an array")
	}
	var a struct {
		Separator string `json:"separator"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = stringify(v)
	}
	return joinStrings(parts, a.Separator), nil
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func opSplit(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("split", "input must be a string")
	}
	var a struct {
		Separator    string `json:"separator"`
		MaxItems     *int   `json:"maxItems"`
		AddRemainder bool   `json:"addRemainder"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	if a.MaxItems == nil {
		parts := strings.Split(s, a.Separator)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	}
	max := *a.MaxItems
	if max < 1 {
		max = 1
	}
	if a.AddRemainder {
		parts := strings.SplitN(s, a.Separator, max)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	}
	parts := strings.Split(s, a.Separator)
	if len(parts) > max {
		parts = parts[:max]
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func opFilter(ex *Exec, arg any, input any) (any, error) {
	var spec struct {
		Source any `json:"source"`
		Filter any `json:"filter"`
	}
	hasSourceFilter := false
	if m, ok := arg.(map[string]any); ok {
		if _, ok := m["source"]; ok {
			if _, ok2 := m["filter"]; ok2 {
				hasSourceFilter = true
			}
		}
	}
	if hasSourceFilter {
		if err := decodeArg(arg, &spec); err != nil {
			return nil, err
		}
		srcVal, err := ex.EvalSub(spec.Source, input)
		if err != nil {
			return nil, err
		}
		arr, ok := srcVal.([]any)
		if !ok {
			return nil, argError("filter", "source must resolve to an array")
		}
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			keep, err := ex.EvalSub(spec.Filter, map[string]any{"item": item})
			if err != nil {
				return nil, err
			}
			if truthy(keep) {
				out = append(out, item)
			}
		}
		return out, nil
	}

	arr, ok := input.([]any)
	if !ok {
		return nil, argError("filter", "input must be an array")
	}
	if arg == nil {
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			if truthy(item) {
				out = append(out, item)
			}
		}
		return out, nil
	}
	out := make([]any, 0, len(arr))
	for _, item := range arr {
		keep, err := ex.EvalSub(arg, item)
		if err != nil {
			return nil, err
		}
		if truthy(keep) {
			out = append(out, item)
		}
	}
	return out, nil
}

func opUnion(ex *Exec, arg any, input any) (any, error) {
	specs, ok := arg.([]any)
	if !ok {
		return nil, argError("union", "argument must be an array of sub-transformations")
	}
	var out []any
	seen := make(map[string]bool)
	for _, spec := range specs {
		val, err := ex.EvalSub(spec, input)
		if err != nil {
			return nil, err
		}
		arr, ok := val.([]any)
		if !ok {
			continue
		}
		for _, item := range arr {
			key := stringify(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func opSlice(ex *Exec, arg any, input any) (any, error) {
	arr, ok := input.([]any)
	if !ok {
		return nil, argError("slice", "input must be an array")
	}
	var a struct {
		From int  `json:"from"`
		To   *int `json:"to"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	from := a.From
	if from < 0 {
		from = 0
	}
	if from > len(arr) {
		from = len(arr)
	}
	to := len(arr)
	if a.To != nil {
		to = *a.To
	}
	if to > len(arr) {
		to = len(arr)
	}
	if to < from {
		to = from
	}
	return append([]any{}, arr[from:to]...), nil
}

func opCase(ex *Exec, arg any, input any) (any, error) {
	m, ok := arg.(map[string]any)
	if !ok {
		return nil, argError("case", "argument must be a mapping")
	}
	key := stringify(input)
	if v, ok := m[key]; ok {
		return v, nil
	}
	if v, ok := m["default"]; ok {
		return v, nil
	}
	return nil, nil
}

func opKeys(ex *Exec, arg any, input any) (any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, argError("keys", "input must be a mapping")
	}
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out, nil
}

func decodeKeyList(arg any) []string {
	switch v := arg.(type) {
	case []any:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys
	case string:
		return []string{v}
	default:
		return nil
	}
}

func opOmit(ex *Exec, arg any, input any) (any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, argError("omit", "input must be a mapping")
	}
	skip := make(map[string]bool)
	for _, k := range decodeKeyList(arg) {
		skip[k] = true
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !skip[k] {
			out[k] = v
		}
	}
	return out, nil
}

func opPick(ex *Exec, arg any, input any) (any, error) {
	m, ok := input.(map[string]any)
	if !ok {
		return nil, argError("pick", "input must be a mapping")
	}
	out := make(map[string]any)
	for _, k := range decodeKeyList(arg) {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func opChanged(ex *Exec, arg any, input any) (any, error) {
	var a struct {
		Left  any `json:"left"`
		Right any `json:"right"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	left, _ := a.Left.(map[string]any)
	right, _ := a.Right.(map[string]any)
	diff := make(map[string]any)
	for k, rv := range right {
		lv, existed := left[k]
		if !existed || !deepEqual(lv, rv) {
			diff[k] = rv
		}
	}
	for k := range left {
		if _, ok := right[k]; !ok {
			diff[k] = nil
		}
	}
	return diff, nil
}

func opChange(ex *Exec, arg any, input any) (any, error) {
	var a struct {
		Target  any            `json:"target"`
		Changes map[string]any `json:"changes"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	target, _ := a.Target.(map[string]any)
	out := make(map[string]any, len(target))
	for k, v := range target {
		out[k] = v
	}
	for k, v := range a.Changes {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func deepEqual(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok && bok {
		if len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			bv, ok := bm[k]
			if !ok || !deepEqual(v, bv) {
				return false
			}
		}
		return true
	}
	aa, aok := a.([]any)
	ba, bok := b.([]any)
	if aok && bok {
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !deepEqual(aa[i], ba[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
