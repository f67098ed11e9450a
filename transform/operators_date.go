package transform

import (
	"strings"
	"time"
)

// dateTokenPairs translates the engine's date-format tokens into Go's
// reference-layout equivalents. Only a fixed token set is recognized; this
// is not a general format-string translator.
var dateTokenPairs = []struct {
	token, layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func toGoLayout(format string) string {
	out := format
	for _, p := range dateTokenPairs {
		out = strings.ReplaceAll(out, p.token, p.layout)
	}
	return out
}

// monthNames gives a tiny built-in locale table of month names (there is no
// day-name table). No locale-aware
// date library appeared in the retrieved pack; full i18n is out of reach
// without one, so only these two locales are recognized and anything else
// falls back to English.
var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"nl": {"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"},
}

func localizedFormat(t time.Time, format, locale string) string {
	layout := toGoLayout(format)
	out := t.Format(layout)
	names, ok := monthNames[locale]
	if !ok {
		return out
	}
	return strings.ReplaceAll(out, t.Month().String(), names[int(t.Month())-1])
}

type dateArg struct {
	Format string `json:"format"`
	Locale string `json:"locale"`
}

func opParseDate(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("parseDate", "input must be a string")
	}
	var a dateArg
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	layout := toGoLayout(a.Format)
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339), nil
}

func opFormatDate(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("formatDate", "input must be a string")
	}
	var a dateArg
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, nil
	}
	locale := a.Locale
	if locale == "" {
		locale = "en"
	}
	return localizedFormat(t, a.Format, locale), nil
}

func opNow(ex *Exec, arg any, input any) (any, error) {
	return float64(time.Now().Unix()), nil
}
