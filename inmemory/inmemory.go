package inmemory

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
)

// Searcher implements the panelsearch.Searcher interface over a record
// collection held in memory.
type Searcher struct {
	mu      sync.RWMutex
	records []panelsearch.Record
}

// New creates a searcher over records. The slice is not copied and
// must not be modified by the caller afterwards.
// The searcher is safe for concurrent operations.
func New(records []panelsearch.Record) *Searcher {
	return &Searcher{records: records}
}

// Replace swaps the whole collection, e.g. after the list was reloaded.
// This method is safe for concurrent use.
func (s *Searcher) Replace(records []panelsearch.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

// Records returns the current collection. Callers must treat it as read-only.
func (s *Searcher) Records() []panelsearch.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Size returns the number of records in the collection.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Filter applies the expressions to the current collection.
func (s *Searcher) Filter(exprs ...panelsearch.Expression) []panelsearch.Record {
	return Apply(s.Records(), exprs...)
}

// Search implements the panelsearch.Searcher interface.
func (s *Searcher) Search(ctx context.Context, query string, opts ...panelsearch.SearchOption) (*panelsearch.Results, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return nil, panelsearch.ErrCanceled
	default:
	}

	cfg := panelsearch.NewSearchConfig(opts...)
	records := s.Records()

	matcher := NewMatcher(query, cfg.MinSearchLength)
	activeSearch := matcher.Active() && len(cfg.Fields) > 0
	exprs := append([]panelsearch.Expression{
		panelsearch.Match(query, cfg.MinSearchLength, cfg.Fields...),
	}, cfg.Filters...)
	match := Compile(exprs...)

	matches := make([]panelsearch.Record, 0, len(records))
	for i, record := range records {
		// Check context periodically
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, panelsearch.ErrCanceled
			default:
			}
		}
		if match(record) {
			matches = append(matches, record)
		}
	}

	total := len(matches)
	start := min(max(cfg.Offset, 0), total)
	end := total
	if cfg.Limit > 0 && start+cfg.Limit < total {
		end = start + cfg.Limit
	}

	results := &panelsearch.Results{
		Items: matches[start:end],
		Total: int64(total),
		Query: query,
		Stats: panelsearch.NewStats(len(records), total, activeSearch, hasConstraints(cfg.Filters)),
		Took:  time.Since(startTime).Milliseconds(),
	}
	if end < total {
		nextOffset := end
		results.NextOffset = &nextOffset
	}
	return results, nil
}

func hasConstraints(exprs []panelsearch.Expression) bool {
	for _, e := range exprs {
		if compile(e) != nil {
			return true
		}
	}
	return false
}

// DecodeRecords parses a REST list payload. Both a bare JSON array and a
// paginated envelope with a "results" array are accepted.
func DecodeRecords(data []byte) ([]panelsearch.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []panelsearch.Record{}, nil
	}

	if data[0] == '[' {
		var records []panelsearch.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal record list")
		}
		return records, nil
	}

	var envelope struct {
		Results []panelsearch.Record `json:"results"`
		Data    []panelsearch.Record `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal record envelope")
	}
	if envelope.Results != nil {
		return envelope.Results, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return nil, errors.New("payload has neither a results nor a data array")
}
