package filterconfig

import (
	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type descriptorFile struct {
	Descriptors []Descriptor `koanf:"descriptors"`
}

// LoadFile reads descriptors from a TOML file of the form
//
//	[[descriptors]]
//	entity = "proveedores"
//	search_fields = ["razon_social", "ruc"]
//
//	[[descriptors.filter_groups]]
//	key = "selectedStatus"
//	type = "buttons"
//	field = "activo"
//	match = "boolean"
//
// Groups naming a predicate get the registered custom filter attached.
// Every descriptor is validated; nothing is registered.
func LoadFile(path string) ([]Descriptor, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "failed to load descriptors from %s", path)
	}

	var f descriptorFile
	if err := k.Unmarshal("", &f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode descriptors from %s", path)
	}

	for i := range f.Descriptors {
		if err := attachPredicates(&f.Descriptors[i]); err != nil {
			return nil, err
		}
		if err := Validate(f.Descriptors[i]); err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
	}
	return f.Descriptors, nil
}

// LoadAndRegister loads path and registers every descriptor in it.
func LoadAndRegister(path string) ([]string, error) {
	descs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	entities := make([]string, 0, len(descs))
	for _, d := range descs {
		if err := Register(d); err != nil {
			return nil, err
		}
		entities = append(entities, d.Entity)
	}
	return entities, nil
}

func attachPredicates(d *Descriptor) error {
	for _, g := range d.FilterGroups {
		if g.Predicate == "" {
			continue
		}
		factory, ok := predicateFactory(g.Predicate)
		if !ok {
			return errors.Wrapf(panelsearch.ErrInvalidDescriptor,
				"descriptor %q: unknown predicate %q for group %q", d.Entity, g.Predicate, g.Key)
		}
		if d.CustomFilters == nil {
			d.CustomFilters = make(map[string]panelsearch.Predicate)
		}
		d.CustomFilters[g.Key] = factory(g.Field)
	}
	return nil
}
