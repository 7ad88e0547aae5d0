package filterconfig

import (
	"strings"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/inmemory"
	"github.com/ProyectAquanqa/panelsearch/textnorm"
)

// Selections understood by Presence.
const (
	SelectWith    = "with"
	SelectWithout = "without"
)

// PredicateFactory builds a custom predicate bound to a record field.
type PredicateFactory func(field string) panelsearch.Predicate

var (
	predicatesMu sync.RWMutex
	predicates   = map[string]PredicateFactory{
		"presence": Presence,
		"contains": Contains,
	}
)

// RegisterPredicate makes factory available to descriptors loaded from
// files under name. Registering a name twice replaces the factory.
func RegisterPredicate(name string, factory PredicateFactory) {
	predicatesMu.Lock()
	defer predicatesMu.Unlock()
	predicates[name] = factory
}

func predicateFactory(name string) (PredicateFactory, bool) {
	predicatesMu.RLock()
	defer predicatesMu.RUnlock()
	f, ok := predicates[name]
	return f, ok
}

// Presence keeps records that have ("with") or lack ("without") a
// non-empty value in field. Any other selection keeps every record.
func Presence(field string) panelsearch.Predicate {
	return func(record panelsearch.Record, selected string) bool {
		v, ok := inmemory.Lookup(record, field)
		present := ok && v != nil
		if s, isString := v.(string); isString {
			present = strings.TrimSpace(s) != ""
		}
		switch selected {
		case SelectWith:
			return present
		case SelectWithout:
			return !present
		}
		return true
	}
}

// Contains keeps records whose field contains the selection, ignoring
// case and accents.
func Contains(field string) panelsearch.Predicate {
	return func(record panelsearch.Record, selected string) bool {
		v, _ := inmemory.Lookup(record, field)
		return strings.Contains(textnorm.Value(v), textnorm.Normalize(selected))
	}
}
