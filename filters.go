package panelsearch

import (
	"maps"
	"sort"
	"strings"
	"time"
)

// DateRange is an inclusive pair of optional date boundaries.
// Boundaries are kept as the strings the UI produced.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IsZero reports whether neither boundary is set.
func (r DateRange) IsZero() bool {
	return strings.TrimSpace(r.Start) == "" && strings.TrimSpace(r.End) == ""
}

// Bounds parses both boundaries. A missing or unparseable side is returned as nil.
// A date-only end boundary is extended to the last instant of that day.
func (r DateRange) Bounds() (start, end *time.Time) {
	if t, ok := ParseDate(r.Start); ok {
		start = &t
	}
	if t, ok := ParseDate(r.End); ok {
		if isDateOnly(r.End) {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
		}
		end = &t
	}
	return start, end
}

// Filters is the structured filter state of a view.
// An absent key or an empty value means no constraint.
type Filters struct {
	Values    map[string]string
	DateRange DateRange
}

// Get returns the selected value for key, or "" when unset.
func (f Filters) Get(key string) string {
	if key == KeyDateRange {
		return ""
	}
	return f.Values[key]
}

// Set stores value under key. An empty value removes the key.
func (f *Filters) Set(key, value string) {
	if value == "" {
		delete(f.Values, key)
		return
	}
	if f.Values == nil {
		f.Values = make(map[string]string)
	}
	f.Values[key] = value
}

// Clear resets one filter dimension.
func (f *Filters) Clear(key string) {
	if key == KeyDateRange {
		f.DateRange = DateRange{}
		return
	}
	delete(f.Values, key)
}

// Active reports whether any dimension constrains the result.
func (f Filters) Active() bool {
	if !f.DateRange.IsZero() {
		return true
	}
	for _, v := range f.Values {
		if v != "" {
			return true
		}
	}
	return false
}

// Keys returns the keys with a non-empty value in sorted order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f.Values))
	for k, v := range f.Values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy that shares no map with f.
func (f Filters) Clone() Filters {
	out := Filters{DateRange: f.DateRange}
	if len(f.Values) > 0 {
		out.Values = maps.Clone(f.Values)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the date formats the admin API emits.
// Values without an offset are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

// ParseBool reads a boolean-like filter selection.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "si", "sí", "active", "activo", "activa":
		return true, true
	case "false", "0", "no", "inactive", "inactivo", "inactiva":
		return false, true
	default:
		return false, false
	}
}
