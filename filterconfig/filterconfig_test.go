package filterconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareInjectsHandlers(t *testing.T) {
	var created, exported int
	d := Prepare(Almuerzos, Handlers{
		OnCreate: func() { created++ },
		OnExport: func() { exported++ },
	})

	require.Len(t, d.Actions, 2)
	require.NotNil(t, d.Actions[0].Handler)
	require.NotNil(t, d.Actions[1].Handler)
	d.Actions[0].Handler()
	d.Actions[1].Handler()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, exported)

	assert.Nil(t, Almuerzos.Actions[0].Handler, "template must stay untouched")
}

func TestPrepareByIDWins(t *testing.T) {
	var got string
	d := Prepare(Chatbot, Handlers{
		OnCreate: func() { got = "named" },
		ByID: map[string]func(){
			ActionCreate: func() { got = "by-id" },
			"regenerate": func() { got = "regenerate" },
		},
	})

	d.Actions[0].Handler()
	assert.Equal(t, "by-id", got)
	d.Actions[1].Handler()
	assert.Equal(t, "regenerate", got)
}

func TestPrepareNeverAliasesTemplate(t *testing.T) {
	first := Prepare(Almuerzos, Handlers{})
	second := Prepare(Almuerzos, Handlers{})

	first.SearchFields[0] = "changed"
	first.FilterGroups[0].Options[0].Label = "changed"
	first.FilterGroups[0].Title = "changed"
	first.Actions[0].Label = "changed"
	first.CustomFilters["extra"] = Presence("x")

	for _, d := range []Descriptor{second, Almuerzos} {
		assert.Equal(t, "entrada", d.SearchFields[0])
		assert.Equal(t, "Todos", d.FilterGroups[0].Options[0].Label)
		assert.Equal(t, "Estado", d.FilterGroups[0].Title)
		assert.Equal(t, "Nuevo almuerzo", d.Actions[0].Label)
		assert.NotContains(t, d.CustomFilters, "extra")
	}
}

func TestPrepareWithoutActions(t *testing.T) {
	d := Prepare(Descriptor{Entity: "vacio"}, Handlers{OnCreate: func() {}})
	assert.Empty(t, d.Actions)
	assert.False(t, d.Searchable())
}

func TestBuiltinDescriptorsAreValid(t *testing.T) {
	for _, entity := range []string{"almuerzos", "usuarios", "perfiles", "auditoria", "eventos", "chatbot"} {
		t.Run(entity, func(t *testing.T) {
			d, err := Lookup(entity)
			require.NoError(t, err)
			assert.NoError(t, Validate(d))
			assert.True(t, d.Searchable())
		})
	}
}

func TestLookup(t *testing.T) {
	d, err := Lookup(" Almuerzos ")
	require.NoError(t, err)
	assert.Equal(t, "fecha", d.DateRangeField())

	g, ok := d.Group(panelsearch.KeyStatus)
	require.True(t, ok)
	assert.Equal(t, MatchBoolean, g.Match)
	assert.Equal(t, "active", g.Field)

	_, ok = d.Group("selectedNothing")
	assert.False(t, ok)

	_, err = Lookup("proveedores")
	assert.True(t, errors.Is(err, panelsearch.ErrUnknownEntity))
}

func TestDateRangeFieldFallback(t *testing.T) {
	d := Descriptor{DateField: "created_at"}
	assert.Equal(t, "created_at", d.DateRangeField())

	d.FilterGroups = []FilterGroup{{Key: panelsearch.KeyDateRange, Type: DateRangeGroup}}
	assert.Equal(t, "created_at", d.DateRangeField())

	d.FilterGroups[0].Field = "fecha"
	assert.Equal(t, "fecha", d.DateRangeField())
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		desc    Descriptor
		message string
	}{
		"missing_entity": {
			desc:    Descriptor{SearchFields: []string{"nombre"}},
			message: "entity is required",
		},
		"bad_group_type": {
			desc: Descriptor{Entity: "x", FilterGroups: []FilterGroup{
				{Key: "selectedStatus", Type: "slider"},
			}},
			message: `value "slider" for key "type" not recognized`,
		},
		"bad_match": {
			desc: Descriptor{Entity: "x", FilterGroups: []FilterGroup{
				{Key: "selectedStatus", Type: Buttons, Match: "regex"},
			}},
			message: `value "regex" for key "match" not recognized`,
		},
		"empty_search_field": {
			desc:    Descriptor{Entity: "x", SearchFields: []string{"nombre", ""}},
			message: "is required",
		},
		"duplicate_group": {
			desc: Descriptor{Entity: "x", FilterGroups: []FilterGroup{
				{Key: "selectedStatus", Type: Buttons},
				{Key: "selectedStatus", Type: Dropdown},
			}},
			message: `duplicate filter group "selectedStatus"`,
		},
		"date_range_key": {
			desc: Descriptor{Entity: "x", FilterGroups: []FilterGroup{
				{Key: "fecha", Type: DateRangeGroup},
			}},
			message: `date range group must use key "dateRange"`,
		},
		"option_without_label": {
			desc: Descriptor{Entity: "x", FilterGroups: []FilterGroup{
				{Key: "selectedStatus", Type: Buttons, Options: []Option{{Value: "true"}}},
			}},
			message: "label is required",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate(tc.desc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, panelsearch.ErrInvalidDescriptor))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestPresence(t *testing.T) {
	p := Presence("dieta")
	with := panelsearch.Record{"dieta": "vegana"}
	blank := panelsearch.Record{"dieta": "  "}
	null := panelsearch.Record{"dieta": nil}
	missing := panelsearch.Record{}

	assert.True(t, p(with, SelectWith))
	assert.False(t, p(blank, SelectWith))
	assert.False(t, p(null, SelectWith))
	assert.False(t, p(missing, SelectWith))

	assert.False(t, p(with, SelectWithout))
	assert.True(t, p(null, SelectWithout))
	assert.True(t, p(missing, SelectWithout))

	assert.True(t, p(with, "cualquiera"))
}

func TestContains(t *testing.T) {
	p := Contains("area_detail.nombre")
	r := panelsearch.Record{"area_detail": map[string]interface{}{"nombre": "Producción"}}
	assert.True(t, p(r, "produccion"))
	assert.False(t, p(r, "sistemas"))
	assert.False(t, p(panelsearch.Record{}, "produccion"))
}

const descriptorsTOML = `
[[descriptors]]
entity = "proveedores"
search_fields = ["razon_social", "ruc", "contacto.nombre"]
date_field = "created_at"

[[descriptors.filter_groups]]
key = "selectedStatus"
title = "Estado"
type = "buttons"
field = "activo"
match = "boolean"

[[descriptors.filter_groups.options]]
value = ""
label = "Todos"

[[descriptors.filter_groups.options]]
value = "true"
label = "Activos"

[[descriptors.filter_groups]]
key = "selectedContract"
title = "Contrato"
type = "buttons"
field = "contrato"
predicate = "presence"

[[descriptors.actions]]
id = "create"
label = "Nuevo proveedor"
icon = "plus"
variant = "primary"
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "descriptors.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	descs, err := LoadFile(writeFile(t, descriptorsTOML))
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "proveedores", d.Entity)
	assert.Equal(t, []string{"razon_social", "ruc", "contacto.nombre"}, d.SearchFields)
	assert.Equal(t, "created_at", d.DateRangeField())
	require.Len(t, d.FilterGroups, 2)
	assert.Equal(t, MatchBoolean, d.FilterGroups[0].Match)
	assert.Len(t, d.FilterGroups[0].Options, 2)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, ActionCreate, d.Actions[0].ID)

	pred, ok := d.CustomFilters["selectedContract"]
	require.True(t, ok)
	assert.True(t, pred(panelsearch.Record{"contrato": "C-001"}, SelectWith))
	assert.False(t, pred(panelsearch.Record{"contrato": nil}, SelectWith))
}

func TestLoadFileUnknownPredicate(t *testing.T) {
	path := writeFile(t, `
[[descriptors]]
entity = "x"

[[descriptors.filter_groups]]
key = "selectedThing"
type = "buttons"
predicate = "nope"
`)
	_, err := LoadFile(path)
	assert.True(t, errors.Is(err, panelsearch.ErrInvalidDescriptor))
}

func TestLoadFileInvalidDescriptor(t *testing.T) {
	path := writeFile(t, `
[[descriptors]]
search_fields = ["nombre"]
`)
	_, err := LoadFile(path)
	assert.True(t, errors.Is(err, panelsearch.ErrInvalidDescriptor))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestRegisterPredicateAndLoad(t *testing.T) {
	RegisterPredicate("prefix", func(field string) panelsearch.Predicate {
		return func(r panelsearch.Record, selected string) bool {
			s, _ := r[field].(string)
			return len(s) >= len(selected) && s[:len(selected)] == selected
		}
	})

	entities, err := LoadAndRegister(writeFile(t, `
[[descriptors]]
entity = "sedes"
search_fields = ["nombre"]

[[descriptors.filter_groups]]
key = "selectedCode"
type = "dropdown"
field = "codigo"
predicate = "prefix"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"sedes"}, entities)
	assert.Contains(t, Entities(), "sedes")

	d, err := Lookup("sedes")
	require.NoError(t, err)
	assert.True(t, d.CustomFilters["selectedCode"](panelsearch.Record{"codigo": "LIM-01"}, "LIM"))
	assert.False(t, d.CustomFilters["selectedCode"](panelsearch.Record{"codigo": "ARQ-01"}, "LIM"))
}
