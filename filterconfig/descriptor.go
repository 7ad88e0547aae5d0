// Package filterconfig describes, per entity list of the admin panel, which
// fields the free text search covers, which structured filters exist and
// which toolbar actions are offered.
package filterconfig

import (
	"maps"
	"slices"

	"github.com/ProyectAquanqa/panelsearch"
)

// GroupType is a rendering hint for a filter group.
type GroupType string

const (
	Buttons        GroupType = "buttons"
	Dropdown       GroupType = "dropdown"
	DateRangeGroup GroupType = "dateRange"
)

// MatchMode selects how a group's value is compared with the record field.
type MatchMode string

const (
	// MatchEquals compares with numeric/string tolerant equality. It is the default.
	MatchEquals MatchMode = "equals"
	// MatchBoolean reads the selection as a boolean such as "true" or "inactivo".
	MatchBoolean MatchMode = "boolean"
)

// Option is one selectable value of a filter group. An empty Value stands for "all".
type Option struct {
	Value string `json:"value" koanf:"value"`
	Label string `json:"label" koanf:"label" validate:"required"`
}

// FilterGroup is one structured filter of a list.
type FilterGroup struct {
	Key   string    `json:"key" koanf:"key" validate:"required"`
	Title string    `json:"title" koanf:"title"`
	Type  GroupType `json:"type" koanf:"type" validate:"required,oneof=buttons dropdown dateRange"`
	// Field is the record field the group constrains. Dotted paths are allowed.
	Field string    `json:"field" koanf:"field"`
	Match MatchMode `json:"match,omitempty" koanf:"match" validate:"omitempty,oneof=equals boolean"`
	// Predicate names a registered custom predicate, see RegisterPredicate.
	Predicate string   `json:"predicate,omitempty" koanf:"predicate"`
	Options   []Option `json:"options,omitempty" koanf:"options" validate:"dive"`
}

// Action is a toolbar button. The engine never looks at actions.
type Action struct {
	ID      string `json:"id" koanf:"id" validate:"required"`
	Label   string `json:"label" koanf:"label" validate:"required"`
	Icon    string `json:"icon,omitempty" koanf:"icon"`
	Variant string `json:"variant,omitempty" koanf:"variant"`
	// Handler is injected at runtime by Prepare.
	Handler func() `json:"-" koanf:"-"`
}

// Descriptor is the filter configuration of one entity list.
type Descriptor struct {
	Entity       string        `json:"entity" koanf:"entity" validate:"required"`
	SearchFields []string      `json:"searchFields" koanf:"search_fields" validate:"dive,required"`
	FilterGroups []FilterGroup `json:"filterGroups" koanf:"filter_groups" validate:"dive"`
	// CustomFilters take precedence over the group field for their key.
	CustomFilters map[string]panelsearch.Predicate `json:"-" koanf:"-"`
	Actions       []Action                         `json:"actions" koanf:"actions" validate:"dive"`
	// DateField is used when the date range group does not name a field.
	DateField string `json:"dateField,omitempty" koanf:"date_field"`
}

// Group returns the filter group with the given key.
func (d Descriptor) Group(key string) (FilterGroup, bool) {
	for _, g := range d.FilterGroups {
		if g.Key == key {
			return g, true
		}
	}
	return FilterGroup{}, false
}

// DateRangeField returns the record field the date range constrains,
// or "" when the list has no date filter.
func (d Descriptor) DateRangeField() string {
	for _, g := range d.FilterGroups {
		if g.Type == DateRangeGroup && g.Field != "" {
			return g.Field
		}
	}
	return d.DateField
}

// Searchable reports whether free text search has any field to look at.
func (d Descriptor) Searchable() bool {
	return len(d.SearchFields) > 0
}

// Clone returns a deep copy. Predicates and handlers are shared since
// functions are immutable.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.SearchFields = slices.Clone(d.SearchFields)
	if d.FilterGroups != nil {
		out.FilterGroups = make([]FilterGroup, len(d.FilterGroups))
		for i, g := range d.FilterGroups {
			g.Options = slices.Clone(g.Options)
			out.FilterGroups[i] = g
		}
	}
	out.CustomFilters = maps.Clone(d.CustomFilters)
	out.Actions = slices.Clone(d.Actions)
	return out
}
