package transform

import (
	"github.com/xeipuuv/gojsonschema"
)

// opAssert validates input against a JSON-Schema-like mapping, failing the
// chain (with an error, not a null-bail) on mismatch. On success it passes
// input through unchanged.
func opAssert(ex *Exec, arg any, input any) (any, error) {
	schema, ok := arg.(map[string]any)
	if !ok {
		return nil, argError("assert", "argument must be a JSON-Schema mapping")
	}
	schemaLoader := gojsonschema.NewGoLoader(schema)
	docLoader := gojsonschema.NewGoLoader(input)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, argError("assert", "validating: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, argError("assert", "schema validation failed: %v", msgs)
	}
	return input, nil
}
