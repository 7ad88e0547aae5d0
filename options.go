package panelsearch

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Limit specifies the maximum number of results to return. Zero means no limit.
	Limit int

	// Offset specifies the number of results to skip for pagination.
	Offset int

	// Fields lists the record fields the query is matched against.
	// With no fields the query filters nothing.
	Fields []string

	// MinSearchLength is the shortest query that filters anything.
	MinSearchLength int

	// Filters contains filter expressions to apply.
	Filters []Expression
}

// NewSearchConfig applies opts over the defaults.
func NewSearchConfig(opts ...SearchOption) *SearchConfig {
	cfg := &SearchConfig{MinSearchLength: DefaultMinSearchLength}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	return cfg
}

type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithLimit sets the maximum number of results to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Limit = n
	})
}

// WithOffset sets the number of results to skip for pagination.
func WithOffset(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Offset = n
	})
}

// WithFields adds fields the query is matched against.
func WithFields(fields ...string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Fields = append(cfg.Fields, fields...)
	})
}

// WithMinSearchLength overrides DefaultMinSearchLength.
func WithMinSearchLength(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.MinSearchLength = n
	})
}
