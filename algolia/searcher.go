package algolia

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLimit is the page size used when no limit is given.
const DefaultLimit = 100

// Searcher implements the panelsearch.Searcher interface using Algolia.
//
// Free-text matching and accent folding are done by Algolia itself. Custom
// predicates cannot run remotely and are skipped with a warning, so callers
// that rely on them should filter locally.
type Searcher struct {
	client    *Client
	indexName string
	logger    *slog.Logger
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string) *Searcher {
	return &Searcher{
		client:    client,
		indexName: indexName,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used for skipped expressions.
func (s *Searcher) WithLogger(logger *slog.Logger) *Searcher {
	s.logger = logger
	return s
}

// Search implements the panelsearch.Searcher interface using Algolia search.
func (s *Searcher) Search(ctx context.Context, query string, opts ...panelsearch.SearchOption) (*panelsearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, panelsearch.ErrCanceled
	default:
	}

	cfg := panelsearch.NewSearchConfig(opts...)
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	req := buildRequest(query, cfg)
	for _, skipped := range req.skipped {
		s.logger.WarnContext(ctx, "expression cannot be evaluated by algolia, skipping",
			"index", s.indexName, "type", fmt.Sprintf("%T", skipped))
	}

	ctx, span := s.client.tracer.Start(ctx, "algolia.search",
		trace.WithAttributes(
			attribute.String("algolia.index_name", s.indexName),
			attribute.String("algolia.filters", req.filters),
		),
	)
	defer span.End()

	algoliaClient, err := s.client.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, errors.WithSecondaryError(
			panelsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "failed to get Algolia client"),
		)
	}

	index := algoliaClient.InitIndex(s.indexName)

	res, err := index.Search(req.query, req.params...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, panelsearch.ErrCanceled
		}
		return nil, errors.WithSecondaryError(
			panelsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia search failed"),
		)
	}

	items := make([]panelsearch.Record, 0, len(res.Hits))
	for _, hit := range res.Hits {
		delete(hit, "_highlightResult")
		delete(hit, "_snippetResult")
		items = append(items, hit)
	}

	// The index size is unknown remotely, so stats are relative to the hits.
	results := &panelsearch.Results{
		Items: items,
		Total: int64(res.NbHits),
		Query: query,
		Stats: panelsearch.NewStats(res.NbHits, res.NbHits, req.query != "", req.filters != ""),
		Took:  time.Since(startTime).Milliseconds(),
	}

	nextPage := res.Page + 1
	if nextPage < res.NbPages {
		nextOffset := nextPage * cfg.Limit
		results.NextOffset = &nextOffset
	}

	span.SetAttributes(attribute.Int("algolia.hits", res.NbHits))
	return results, nil
}

type request struct {
	query   string
	filters string
	params  []interface{}
	skipped []panelsearch.Expression
}

// buildRequest converts a panelsearch.SearchConfig to Algolia search parameters.
// A query shorter than the minimum search length is sent empty, which
// Algolia answers with every record.
func buildRequest(query string, cfg *panelsearch.SearchConfig) request {
	req := request{query: effectiveQuery(query, cfg.MinSearchLength)}
	fields := cfg.Fields

	filters := make([]string, 0, len(cfg.Filters))
	for _, expr := range cfg.Filters {
		if m, ok := expr.(panelsearch.MatchExpr); ok && req.query == "" {
			if term := matchTerm(m); term != "" {
				req.query = term
				fields = m.Fields
			}
			continue
		}
		filter, skipped := convertExpressionToFilter(expr)
		req.skipped = append(req.skipped, skipped...)
		if filter != "" {
			filters = append(filters, filter)
		}
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	req.params = append(req.params, opt.HitsPerPage(limit))
	if cfg.Offset > 0 {
		req.params = append(req.params, opt.Page(cfg.Offset/limit))
	}
	if req.query != "" && len(fields) > 0 {
		req.params = append(req.params, opt.RestrictSearchableAttributes(fields...))
	}
	if len(filters) > 0 {
		if len(filters) == 1 {
			req.filters = filters[0]
		} else {
			req.filters = "(" + strings.Join(filters, ") AND (") + ")"
		}
		req.params = append(req.params, opt.Filters(req.filters))
	}
	return req
}

func effectiveQuery(query string, minLength int) string {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minLength {
		return ""
	}
	return query
}

func matchTerm(m panelsearch.MatchExpr) string {
	minLength := m.MinLength
	if minLength <= 0 {
		minLength = panelsearch.DefaultMinSearchLength
	}
	return effectiveQuery(m.Term, minLength)
}

// convertExpressionToFilter converts a panelsearch expression to an Algolia
// filter string. Expressions without a constraint convert to "". The second
// result lists the expressions Algolia cannot evaluate.
func convertExpressionToFilter(expr panelsearch.Expression) (string, []panelsearch.Expression) {
	switch e := expr.(type) {
	case panelsearch.AndExpr:
		return convertGroup(e.Exprs, " AND ")
	case panelsearch.OrExpr:
		return convertGroup(e.Exprs, " OR ")
	case panelsearch.NotExpr:
		inner, skipped := convertExpressionToFilter(e.Inner)
		if inner == "" {
			return "", skipped
		}
		return "NOT (" + inner + ")", skipped
	case panelsearch.EqExpr:
		return convertEqExpression(e), nil
	case panelsearch.NeExpr:
		return convertNeExpression(e), nil
	case panelsearch.BoolExpr:
		return convertBoolExpression(e), nil
	case panelsearch.DateRangeExpr:
		return convertDateRangeExpression(e), nil
	case panelsearch.RangeExpr:
		return convertRangeExpression(e), nil
	case panelsearch.ExistsExpr:
		return fmt.Sprintf("%s:*", escapeField(e.Field)), nil
	case panelsearch.CustomExpr:
		if e.Value == "" || e.Predicate == nil {
			return "", nil
		}
		return "", []panelsearch.Expression{e}
	case panelsearch.MatchExpr:
		if matchTerm(e) == "" || len(e.Fields) == 0 {
			return "", nil
		}
		return "", []panelsearch.Expression{e}
	default:
		return "", []panelsearch.Expression{expr}
	}
}

func convertGroup(exprs []panelsearch.Expression, op string) (string, []panelsearch.Expression) {
	var skipped []panelsearch.Expression
	filters := make([]string, 0, len(exprs))
	for _, e := range exprs {
		filter, s := convertExpressionToFilter(e)
		skipped = append(skipped, s...)
		if filter != "" {
			filters = append(filters, "("+filter+")")
		}
	}
	return strings.Join(filters, op), skipped
}

func convertEqExpression(expr panelsearch.EqExpr) string {
	if isEmptyValue(expr.Value) {
		return ""
	}
	return fmt.Sprintf("%s:%s", escapeField(expr.Field), escapeValue(expr.Value))
}

func convertNeExpression(expr panelsearch.NeExpr) string {
	if isEmptyValue(expr.Value) {
		return ""
	}
	return fmt.Sprintf("NOT %s:%s", escapeField(expr.Field), escapeValue(expr.Value))
}

func convertBoolExpression(expr panelsearch.BoolExpr) string {
	want, ok := panelsearch.ParseBool(expr.Value)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%s", escapeField(expr.Field), strconv.FormatBool(want))
}

// convertDateRangeExpression filters on the numeric companion attribute
// written by PrepareObjects.
func convertDateRangeExpression(expr panelsearch.DateRangeExpr) string {
	start, end := expr.Range.Bounds()
	field := escapeField(expr.Field + TimestampSuffix)

	var filters []string
	if start != nil {
		filters = append(filters, fmt.Sprintf("%s >= %d", field, start.Unix()))
	}
	if end != nil {
		filters = append(filters, fmt.Sprintf("%s <= %d", field, end.Unix()))
	}
	return strings.Join(filters, " AND ")
}

func convertRangeExpression(expr panelsearch.RangeExpr) string {
	var filters []string

	if expr.Min != nil {
		filters = append(filters, fmt.Sprintf("%s >= %s", escapeField(expr.Field), escapeNumericValue(expr.Min)))
	}

	if expr.Max != nil {
		filters = append(filters, fmt.Sprintf("%s <= %s", escapeField(expr.Field), escapeNumericValue(expr.Max)))
	}

	return strings.Join(filters, " AND ")
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// escapeField escapes field names for Algolia filters
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

// escapeValue escapes string values for Algolia filters
func escapeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return `"` + strconv.FormatFloat(v, 'f', -1, 64) + `"`
	default:
		return fmt.Sprintf(`"%v"`, value)
	}
}

// escapeNumericValue escapes numeric values for Algolia filters
func escapeNumericValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		str := strings.TrimSpace(fmt.Sprintf("%v", value))
		if _, err := strconv.ParseFloat(str, 64); err == nil {
			return str
		}
		return escapeValue(value)
	}
}
