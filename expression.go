package panelsearch

// Expression represents a composable filter expression.
// All Expressions are SearchOptions, but not all SearchOptions are Expressions.
//
// Leaf expressions whose selected value is empty do not constrain anything,
// so a filter state can be turned into expressions without checking which
// dimensions are set.
type Expression interface {
	SearchOption
	// expr is a marker method to distinguish expressions from other options.
	expr()
}

type baseExpr struct{}

func (baseExpr) expr() {}

// AndExpr represents an AND combination of expressions.
type AndExpr struct {
	baseExpr
	Exprs []Expression
}

// Apply implements the SearchOption interface for AndExpr.
func (a AndExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, a)
}

// And creates an AND expression combining multiple expressions.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// OrExpr represents an OR combination of expressions.
type OrExpr struct {
	baseExpr
	Exprs []Expression
}

// Apply implements the SearchOption interface for OrExpr.
func (o OrExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, o)
}

// Or creates an OR expression combining multiple expressions.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// NotExpr represents a NOT negation of an expression.
type NotExpr struct {
	baseExpr
	Inner Expression
}

// Apply implements the SearchOption interface for NotExpr.
func (n NotExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Not creates a NOT expression negating the given expression.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}

// MatchExpr matches a free-text term against a set of fields.
type MatchExpr struct {
	baseExpr
	Term string
	// MinLength is the shortest term that filters anything. Zero means DefaultMinSearchLength.
	MinLength int
	Fields    []string
}

// Apply implements the SearchOption interface for MatchExpr.
func (m MatchExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, m)
}

// Match creates a free-text expression. A record passes when the
// normalized term occurs in any of the fields.
func Match(term string, minLength int, fields ...string) Expression {
	return MatchExpr{Term: term, MinLength: minLength, Fields: fields}
}

// EqExpr represents an equality comparison expression.
type EqExpr struct {
	baseExpr
	// Field is a field name or a dotted path into nested objects.
	Field string
	// Value is the value to compare against. An empty string or nil disables the expression.
	Value interface{}
}

// Apply implements the SearchOption interface for EqExpr.
func (e EqExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Eq creates an equality comparison expression.
func Eq(field string, value interface{}) Expression {
	return EqExpr{Field: field, Value: value}
}

// NeExpr represents a not-equal comparison expression.
type NeExpr struct {
	baseExpr
	Field string
	Value interface{}
}

// Apply implements the SearchOption interface for NeExpr.
func (n NeExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, n)
}

// Ne creates a not-equal comparison expression.
func Ne(field string, value interface{}) Expression {
	return NeExpr{Field: field, Value: value}
}

// BoolExpr compares a boolean record field with a boolean-like selection
// such as "true", "false", "1", "0", "active" or "inactivo".
type BoolExpr struct {
	baseExpr
	Field string
	// Value is the selection; one that does not parse as a boolean disables the expression.
	Value string
}

// Apply implements the SearchOption interface for BoolExpr.
func (b BoolExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, b)
}

// Bool creates a boolean comparison expression.
func Bool(field, value string) Expression {
	return BoolExpr{Field: field, Value: value}
}

// DateRangeExpr requires a record date to fall inside an inclusive range.
// Records whose date is missing or unparseable never pass.
type DateRangeExpr struct {
	baseExpr
	Field string
	Range DateRange
}

// Apply implements the SearchOption interface for DateRangeExpr.
func (d DateRangeExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, d)
}

// Between creates a date range expression. Either boundary may be empty.
func Between(field, start, end string) Expression {
	return DateRangeExpr{Field: field, Range: DateRange{Start: start, End: end}}
}

// RangeExpr represents a numeric range comparison expression.
type RangeExpr struct {
	baseExpr
	Field string
	// Min is the minimum value of the range (inclusive). Can be nil for no lower bound.
	Min interface{}
	// Max is the maximum value of the range (inclusive). Can be nil for no upper bound.
	Max interface{}
}

// Apply implements the SearchOption interface for RangeExpr.
func (r RangeExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, r)
}

// Range creates a range comparison expression.
func Range(field string, min, max interface{}) Expression {
	return RangeExpr{Field: field, Min: min, Max: max}
}

// ExistsExpr checks that a field is present and not null.
type ExistsExpr struct {
	baseExpr
	Field string
}

// Apply implements the SearchOption interface for ExistsExpr.
func (e ExistsExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, e)
}

// Exists creates a field existence check expression.
func Exists(field string) Expression {
	return ExistsExpr{Field: field}
}

// CustomExpr applies an entity specific predicate to the selected value.
type CustomExpr struct {
	baseExpr
	Key       string
	Value     string
	Predicate Predicate
}

// Apply implements the SearchOption interface for CustomExpr.
func (c CustomExpr) Apply(cfg *SearchConfig) {
	cfg.Filters = append(cfg.Filters, c)
}

// Custom creates an expression backed by predicate. An empty value disables it.
func Custom(key, value string, predicate Predicate) Expression {
	return CustomExpr{Key: key, Value: value, Predicate: predicate}
}
