package cte

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// CT-e files arrive with or without a namespace prefix on every element
// depending on the emitter, so all lookups treat `<ns:tag>` and `<tag>`
// as the same element.
var tagPatterns sync.Map // tag name -> *regexp.Regexp

func tagPattern(name string) *regexp.Regexp {
	if cached, ok := tagPatterns.Load(name); ok {
		return cached.(*regexp.Regexp)
	}
	quoted := regexp.QuoteMeta(name)
	re := regexp.MustCompile(
		`(?s)<(?:[A-Za-z0-9_]+:)?` + quoted + `(?:\s[^>]*)?>(.*?)</(?:[A-Za-z0-9_]+:)?` + quoted + `\s*>`,
	)
	tagPatterns.Store(name, re)
	return re
}

// Tag returns the text content of the first element with the given
// name, ignoring any namespace prefix. It returns "" when the element
// is absent.
func Tag(xml, name string) string {
	m := tagPattern(name).FindStringSubmatch(xml)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Tags returns the text content of every element with the given name,
// in document order.
func Tags(xml, name string) []string {
	matches := tagPattern(name).FindAllStringSubmatch(xml, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Section returns the inner XML of the first element with the given
// name. Callers scope later lookups to the returned substring so that
// repeated field names (xNome, CNPJ, placa) in sibling sections do not
// collide.
func Section(xml, name string) string {
	m := tagPattern(name).FindStringSubmatch(xml)
	if m == nil {
		return ""
	}
	return m[1]
}

// Sections returns the inner XML of every element with the given name.
func Sections(xml, name string) []string {
	matches := tagPattern(name).FindAllStringSubmatch(xml, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Float extracts a numeric field. Brazilian fiscal documents use a
// decimal comma in some emitters, so a comma is converted to a dot
// before parsing. Absent or unparseable values yield 0.
func Float(xml, name string) float64 {
	raw := strings.ReplaceAll(Tag(xml, name), ",", ".")
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
