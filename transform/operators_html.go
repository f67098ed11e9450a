package transform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(s string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(s))
}

func opHTMLTag(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlTag", "input must be a string")
	}
	selector, ok := arg.(string)
	if !ok {
		return nil, argError("htmlTag", "argument must be a CSS selector string")
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	html, err := doc.Find(selector).First().Html()
	if err != nil {
		return nil, nil
	}
	return html, nil
}

func opHTMLTags(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlTags", "input must be a string")
	}
	selector, ok := arg.(string)
	if !ok {
		return nil, argError("htmlTags", "argument must be a CSS selector string")
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	var out []any
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		html, err := sel.Html()
		if err == nil {
			out = append(out, html)
		}
	})
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func opHTMLTagText(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlTagText", "input must be a string")
	}
	selector, ok := arg.(string)
	if !ok {
		return nil, argError("htmlTagText", "argument must be a CSS selector string")
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	return strings.TrimSpace(doc.Find(selector).First().Text()), nil
}

func opHTMLTagsText(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlTagsText", "input must be a string")
	}
	selector, ok := arg.(string)
	if !ok {
		return nil, argError("htmlTagsText", "argument must be a CSS selector string")
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	var out []any
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		out = append(out, strings.TrimSpace(sel.Text()))
	})
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func opHTMLAttribute(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlAttribute", "input must be a string")
	}
	var a struct {
		Selector  string `json:"selector"`
		Attribute string `json:"attribute"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	val, exists := doc.Find(a.Selector).First().Attr(a.Attribute)
	if !exists {
		return nil, nil
	}
	return val, nil
}

// opHTMLTable locates the row whose cell at index cell matches text
// (case-insensitive, trimmed) and returns the cell at index returnCell, or
// the whole row's cell texts when returnCell is absent.
func opHTMLTable(ex *Exec, arg any, input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argError("htmlTable", "input must be a string")
	}
	var a struct {
		Selector   string `json:"selector"`
		Cell       int    `json:"cell"`
		Text       string `json:"text"`
		ReturnCell *int   `json:"returnCell"`
	}
	if err := decodeArg(arg, &a); err != nil {
		return nil, err
	}
	selector := a.Selector
	if selector == "" {
		selector = "table"
	}
	doc, err := parseHTML(s)
	if err != nil {
		return nil, nil
	}
	needle := strings.ToLower(strings.TrimSpace(a.Text))
	var result any
	doc.Find(selector).Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if a.Cell >= cells.Length() {
			return true
		}
		cellText := strings.ToLower(strings.TrimSpace(cells.Eq(a.Cell).Text()))
		if cellText != needle {
			return true
		}
		if a.ReturnCell != nil {
			if *a.ReturnCell < cells.Length() {
				result = strings.TrimSpace(cells.Eq(*a.ReturnCell).Text())
			}
			return false
		}
		texts := make([]any, cells.Length())
		cells.Each(func(j int, c *goquery.Selection) {
			texts[j] = strings.TrimSpace(c.Text())
		})
		result = texts
		return false
	})
	return result, nil
}
