package restapir

import (
	json "github.com/goccy/go-json"
)

// Marshaler specifies encoding a value to a byte array and back.
type Marshaler interface {
	// Marshal encodes any object to a byte array.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes a byte array back to its object type.
	Unmarshal(data []byte, v any) error
}

type defaultMarshaler struct{}

// NewMarshaler returns the default Marshaler, backed by goccy/go-json (a
// drop-in, faster encoder/decoder than encoding/json, used here since
// toJson/fromJson is a transformation hot path).
func NewMarshaler() Marshaler {
	return &defaultMarshaler{}
}

// Marshal encodes any object to a byte array.
func (defaultMarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a byte array back to its object type.
func (defaultMarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DefaultMarshaler is the package-level default Marshaler instance.
var DefaultMarshaler = NewMarshaler()
