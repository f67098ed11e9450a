package transform

import (
	"fmt"
	"strconv"

	"github.com/mauritsl/restapir"
)

// stringify renders a transform value as the string a case/join/union key
// comparison would use, without going through full JSON encoding.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := restapir.DefaultMarshaler.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}
