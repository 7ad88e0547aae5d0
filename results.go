package panelsearch

import "math"

// Results represents a filtered view over a record collection.
type Results struct {
	// Items contains the matching records in input order.
	// Callers must treat them as read-only.
	Items []Record

	// Total is the number of matching records before pagination.
	Total int64

	// Took is the time taken to execute the search in milliseconds.
	Took int64

	// Query is the original query string for reference.
	Query string

	// Stats summarizes how much of the collection the filters hide.
	Stats Stats

	// NextOffset can be used for pagination.
	NextOffset *int
}

// Stats summarizes a filtered collection.
type Stats struct {
	Total            int  `json:"total"`
	Filtered         int  `json:"filtered"`
	Hidden           int  `json:"hidden"`
	HasResults       bool `json:"hasResults"`
	HasActiveSearch  bool `json:"hasActiveSearch"`
	HasActiveFilters bool `json:"hasActiveFilters"`
	MatchPercentage  int  `json:"matchPercentage"`
}

// NewStats computes the summary for filtered out of total records.
func NewStats(total, filtered int, activeSearch, activeFilters bool) Stats {
	s := Stats{
		Total:            total,
		Filtered:         filtered,
		Hidden:           total - filtered,
		HasResults:       filtered > 0,
		HasActiveSearch:  activeSearch,
		HasActiveFilters: activeFilters,
	}
	if total > 0 {
		s.MatchPercentage = int(math.Round(float64(filtered) * 100 / float64(total)))
	}
	return s
}

// FieldMatch describes one searchable field that matched the search term.
type FieldMatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
	// Highlighted is Value with every occurrence wrapped in <mark></mark>.
	Highlighted string `json:"highlighted"`
}
