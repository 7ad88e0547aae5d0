package inmemory

import (
	"strings"
	"unicode/utf8"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/textnorm"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Matcher matches one search term against record fields.
// The term is normalized once, so a Matcher can be reused across a whole collection.
type Matcher struct {
	term   string
	norm   string
	active bool
}

// NewMatcher prepares term for matching. Terms shorter than minLength runes,
// after trimming, match every record. A minLength of zero selects
// panelsearch.DefaultMinSearchLength.
func NewMatcher(term string, minLength int) *Matcher {
	if minLength <= 0 {
		minLength = panelsearch.DefaultMinSearchLength
	}
	trimmed := strings.TrimSpace(term)
	norm := textnorm.Normalize(trimmed)
	return &Matcher{
		term:   trimmed,
		norm:   norm,
		active: norm != "" && utf8.RuneCountInString(trimmed) >= minLength,
	}
}

// Active reports whether the term is long enough to filter anything.
func (m *Matcher) Active() bool {
	return m.active
}

// Term returns the normalized term.
func (m *Matcher) Term() string {
	return m.norm
}

// Matches reports whether the term occurs in any of the fields.
// Only string values take part; anything else never matches.
func (m *Matcher) Matches(record panelsearch.Record, fields []string) bool {
	if !m.active {
		return true
	}
	for _, field := range fields {
		if m.matchesField(record, field) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchesField(record panelsearch.Record, field string) bool {
	v, ok := Lookup(record, field)
	if !ok {
		return false
	}
	return strings.Contains(textnorm.Value(v), m.norm)
}

// FieldMatches lists the fields that contributed to a match, with the
// occurrences highlighted. It is empty when the term is inactive.
func (m *Matcher) FieldMatches(record panelsearch.Record, fields []string) []panelsearch.FieldMatch {
	if !m.active {
		return nil
	}
	var out []panelsearch.FieldMatch
	for _, field := range fields {
		v, ok := Lookup(record, field)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || !strings.Contains(textnorm.Normalize(s), m.norm) {
			continue
		}
		out = append(out, panelsearch.FieldMatch{
			Field:       field,
			Value:       s,
			Highlighted: textnorm.Highlight(s, m.norm, markOpen, markClose),
		})
	}
	return out
}

// Lookup resolves a field name or a dotted path such as "area_detail.nombre".
// It reports false when any step is missing or is not an object.
func Lookup(record panelsearch.Record, path string) (interface{}, bool) {
	if record == nil || path == "" {
		return nil, false
	}
	if v, ok := record[path]; ok {
		return v, true
	}

	var current interface{} = record
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
