package engine

import (
	"strings"
	"unicode"

	"github.com/ProyectAquanqa/panelsearch/inmemory"
	"github.com/ProyectAquanqa/panelsearch/textnorm"
)

// DefaultSuggestionLimit is used when GetSearchSuggestions gets no positive limit.
const DefaultSuggestionLimit = 5

// GetSearchSuggestions returns up to limit distinct lowercase words from
// the search fields of every record that contain the current term,
// excluding the term itself, in the order they are first seen.
func (e *Engine) GetSearchSuggestions(limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	e.mu.Lock()
	term := e.term
	e.mu.Unlock()

	out := []string{}
	m := inmemory.NewMatcher(term, e.opts.minLength)
	if !m.Active() || !e.desc.Searchable() {
		return out
	}
	needle := m.Term()

	seen := make(map[string]struct{})
	for _, record := range e.store.Records() {
		for _, field := range e.desc.SearchFields {
			v, _ := inmemory.Lookup(record, field)
			s, ok := v.(string)
			if !ok {
				continue
			}
			for _, word := range strings.Fields(s) {
				word = strings.ToLower(strings.TrimFunc(word, isWordEdge))
				if word == "" {
					continue
				}
				if _, dup := seen[word]; dup {
					continue
				}
				folded := textnorm.Normalize(word)
				if folded == needle || !strings.Contains(folded, needle) {
					continue
				}
				seen[word] = struct{}{}
				out = append(out, word)
				if len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}

func isWordEdge(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
