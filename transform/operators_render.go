package transform

import (
	"bytes"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// bareFieldPattern rewrites Mustache-flavored {{field}} references into
// text/template's {{.field}} so existing templates keep working: a {{...}}
// holding nothing but one identifier or dotted path is taken as a bare field
// reference, except the keywords else, end, break, continue and nil. Actions
// that start with '.' or carry arguments are left alone; a zero-argument
// function written on its own (e.g. {{now}}) is rewritten like a field.
var bareFieldPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

func rewriteMustache(tmpl string) string {
	return bareFieldPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		sub := bareFieldPattern.FindStringSubmatch(match)
		field := sub[1]
		switch field {
		case "else", "end", "break", "continue", "nil":
			return match
		}
		return "{{." + field + "}}"
	})
}

func opRender(ex *Exec, arg any, input any) (any, error) {
	tmplStr, ok := arg.(string)
	if !ok {
		return nil, argError("render", "argument must be a template string")
	}
	t, err := template.New("render").Funcs(sprig.TxtFuncMap()).Parse(rewriteMustache(tmplStr))
	if err != nil {
		return nil, argError("render", "parsing template: %v", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, input); err != nil {
		return nil, argError("render", "executing template: %v", err)
	}
	return buf.String(), nil
}
