package filterconfig

import (
	"sort"
	"strings"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Descriptor{}
)

func init() {
	for _, d := range []Descriptor{Almuerzos, Usuarios, Perfiles, Auditoria, Eventos, Chatbot} {
		registry[d.Entity] = d
	}
}

// Register validates d and makes it available to Lookup, replacing any
// descriptor registered for the same entity.
func Register(d Descriptor) error {
	if err := Validate(d); err != nil {
		return err
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(d.Entity)] = d.Clone()
	return nil
}

// Lookup returns a copy of the descriptor registered for entity.
// Entity names are case insensitive.
func Lookup(entity string) (Descriptor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(strings.TrimSpace(entity))]
	if !ok {
		return Descriptor{}, errors.WithSecondaryError(panelsearch.ErrUnknownEntity, errors.Newf("entity %q", entity))
	}
	return d.Clone(), nil
}

// Entities lists the registered entity names in sorted order.
func Entities() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
