package transform

import "github.com/mauritsl/restapir"

// Shorthand coerces spec — a string, array or mapping — into a Template,
// per the engine's shorthand rules: a bare string is sugar for a single get
// (or single, under the legacy dialect) step; a mapping is a one-or-more-key
// template; an array is an explicit, ordered chain of single-key steps (the
// form needed whenever the same operator must appear more than once, since a
// mapping's keys can't repeat).
func Shorthand(spec any, dialect Dialect) (Template, error) {
	switch v := spec.(type) {
	case string:
		return Template{{Operator: defaultPointerOp(dialect), Arg: v}}, nil
	case []any:
		tmpl := make(Template, 0, len(v))
		for _, elem := range v {
			step, err := decodeStep(elem, dialect)
			if err != nil {
				return nil, err
			}
			tmpl = append(tmpl, step)
		}
		return tmpl, nil
	case map[string]any:
		return mapToTemplate(v)
	case Template:
		return v, nil
	case nil:
		return Template{}, nil
	default:
		return nil, restapir.Newf(restapir.ParseError, "transform: cannot coerce %T into a sub-transformation", spec)
	}
}

func defaultPointerOp(dialect Dialect) string {
	if dialect == DialectJSONPath {
		return "single"
	}
	return "get"
}

// mapToTemplate turns a single-key mapping into one Step. Multi-key mappings
// have no reliable order once decoded into a Go map, so an explicit array of
// single-key mappings must be used for true multi-step chains; this mirrors
// the one Step a bare JSON object naturally carries when it has one field.
func mapToTemplate(m map[string]any) (Template, error) {
	if len(m) == 0 {
		return Template{}, nil
	}
	tmpl := make(Template, 0, len(m))
	for k, v := range m {
		tmpl = append(tmpl, Step{Operator: k, Arg: v})
	}
	return tmpl, nil
}

func decodeStep(elem any, dialect Dialect) (Step, error) {
	m, ok := elem.(map[string]any)
	if !ok || len(m) != 1 {
		sub, err := Shorthand(elem, dialect)
		if err != nil {
			return Step{}, err
		}
		if len(sub) == 1 {
			return sub[0], nil
		}
		return Step{Operator: "array", Arg: sub}, nil
	}
	for k, v := range m {
		return Step{Operator: k, Arg: v}, nil
	}
	return Step{}, restapir.New(restapir.ParseError, "transform: empty step")
}
