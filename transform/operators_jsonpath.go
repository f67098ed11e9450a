package transform

import (
	"github.com/PaesslerAG/jsonpath"
)

// opSingle implements the legacy dialect's single(jsonpath) operator: first
// match of the expression, or nil if the expression errors or finds nothing
// (a missing field is not a chain failure, same as pointer get).
func opSingle(ex *Exec, arg any, input any) (any, error) {
	expr, ok := arg.(string)
	if !ok {
		return nil, argError("single", "argument must be a JSONPath string")
	}
	result, err := jsonpath.Get(expr, input)
	if err != nil {
		return nil, nil
	}
	if arr, ok := result.([]any); ok {
		if len(arr) == 0 {
			return nil, nil
		}
		return arr[0], nil
	}
	return result, nil
}

func opMultiple(ex *Exec, arg any, input any) (any, error) {
	expr, ok := arg.(string)
	if !ok {
		return nil, argError("multiple", "argument must be a JSONPath string")
	}
	result, err := jsonpath.Get(expr, input)
	if err != nil {
		return []any{}, nil
	}
	if arr, ok := result.([]any); ok {
		return arr, nil
	}
	return []any{result}, nil
}
