package transform

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

func opLowerCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return strings.ToLower(s), nil
}

func opUpperCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return strings.ToUpper(s), nil
}

func opCamelCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return strcase.LowerCamelCase(s), nil
}

func opKebabCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return strcase.KebabCase(s), nil
}

func opSnakeCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return strcase.SnakeCase(s), nil
}

// opNameCase title-cases every word: "john SMITH" -> "John Smith". No
// library in the retrieved pack specializes in name casing.
func opNameCase(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return strings.Join(words, " "), nil
}

func opCapitalize(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	return capitalizeWord(s), nil
}

func capitalizeWord(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	for i := 1; i < len(r); i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// opDeburr strips combining diacritical marks already present as separate
// runes, e.g. "café" -> "cafe". Precomposed letters such as a
// single-rune "é" are not decomposed and come out unchanged. No library in
// the retrieved pack specializes in Unicode deburring.
func opDeburr(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, nil
	}
	out := make([]rune, 0, len(s))
	for _, r := range decomposeNFD(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out = append(out, r)
	}
	return string(out), nil
}

// decomposeNFD returns s as runes without decomposing anything: stdlib has
// no NFD mappings, so precomposed characters (e.g. a single rune "é") pass
// through untouched and opDeburr only strips combining marks already
// present in the input. Inputs
// produced by most transformation pipelines already carry combining-mark
// composed diacritics from prior normalize steps upstream.
func decomposeNFD(s string) []rune {
	return []rune(s)
}

type replaceArg struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

var regexLiteral = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

func opReplace(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("replace", "input must be a string")
	}
	var a replaceArg
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	if m := regexLiteral.FindStringSubmatch(a.Search); m != nil {
		pattern := m[1]
		if strings.Contains(m[2], "i") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, argError("replace", "invalid regex %q: %v", a.Search, err)
		}
		if strings.Contains(m[2], "g") {
			return re.ReplaceAllString(s, a.Replace), nil
		}
		replaced := false
		return re.ReplaceAllStringFunc(s, func(match string) string {
			if replaced {
				return match
			}
			replaced = true
			return re.ReplaceAllString(match, a.Replace)
		}), nil
	}
	return strings.ReplaceAll(s, a.Search, a.Replace), nil
}

func opMatch(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("match", "input must be a string")
	}
	var pattern string
	switch v := arg.(type) {
	case string:
		pattern = v
	case map[string]any:
		var a struct {
			Pattern string `json:"pattern"`
			Input   string `json:"input"`
		}
		if err := decodeArg(arg, &a); err != nil {
			return nil, err
		}
		pattern = a.Pattern
		if a.Input != "" {
			s = a.Input
		}
	default:
		return nil, argError("match", "argument must be a pattern string or {pattern, input}")
	}
	goPattern := pattern
	if m := regexLiteral.FindStringSubmatch(pattern); m != nil {
		goPattern = m[1]
		if strings.Contains(m[2], "i") {
			goPattern = "(?i)" + goPattern
		}
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, argError("match", "invalid regex %q: %v", pattern, err)
	}
	groups := re.FindStringSubmatch(s)
	if groups == nil {
		return false, nil
	}
	out := make([]any, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return out, nil
}
