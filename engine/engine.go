// Package engine holds the search and filter state of one list view and
// derives the visible records from it.
//
// Only the free text term is debounced. Structured filters apply on the
// next read. Records are never modified.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/filterconfig"
	"github.com/ProyectAquanqa/panelsearch/inmemory"
)

// Engine is the search controller of a list view. It is safe for
// concurrent use; concurrent writers follow last writer wins.
type Engine struct {
	opts   options
	logger *slog.Logger
	desc   filterconfig.Descriptor
	store  *inmemory.Searcher

	mu      sync.Mutex
	rawTerm string
	term    string
	filters panelsearch.Filters
	timer   Timer
	gen     uint64
	closed  bool

	filtered []panelsearch.Record
	fresh    bool
}

// New creates an engine over records configured by desc. The engine keeps
// its own copy of desc; records is shared and must be treated as read-only.
// A descriptor without search fields disables text search.
func New(records []panelsearch.Record, desc filterconfig.Descriptor, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("entity", desc.Entity)

	if !desc.Searchable() {
		logger.Warn("descriptor has no search fields, text search disabled")
	}

	return &Engine{
		opts:   o,
		logger: logger,
		desc:   desc.Clone(),
		store:  inmemory.New(records),
	}
}

// Descriptor returns a copy of the engine's descriptor.
func (e *Engine) Descriptor() filterconfig.Descriptor {
	return e.desc.Clone()
}

// Records returns the unfiltered collection.
func (e *Engine) Records() []panelsearch.Record {
	return e.store.Records()
}

// SearchTerm returns the term as last typed.
func (e *Engine) SearchTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rawTerm
}

// DebouncedTerm returns the term currently used for filtering.
func (e *Engine) DebouncedTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.term
}

// Pending reports whether a typed term is waiting for the debounce delay.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// Filters returns a copy of the structured filter state.
func (e *Engine) Filters() panelsearch.Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters.Clone()
}

// UpdateSearchTerm records term immediately and applies it for filtering
// once no further update arrived for the debounce delay.
func (e *Engine) UpdateSearchTerm(term string) {
	e.mu.Lock()
	e.rawTerm = term
	e.cancelLocked()

	if e.opts.delay <= 0 || e.closed {
		e.applyTermLocked()
		e.unlockAndNotify()
		e.debounced(term)
		return
	}

	gen := e.gen
	e.timer = e.opts.scheduler.AfterFunc(e.opts.delay, func() {
		e.fire(gen)
	})
	e.unlockAndNotify()
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		// superseded by a later update that raced the stop
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.applyTermLocked()
	term := e.term
	e.mu.Unlock()

	e.debounced(term)
}

func (e *Engine) debounced(term string) {
	e.logger.Debug("search term applied", "term", term)
	if e.opts.onDebounce != nil {
		e.opts.onDebounce(term)
	}
}

// Flush applies a pending term now instead of waiting for the delay.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.timer == nil {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.applyTermLocked()
	term := e.term
	e.mu.Unlock()

	e.debounced(term)
}

// ClearSearch resets the search term without waiting for the delay.
func (e *Engine) ClearSearch() {
	e.mu.Lock()
	e.cancelLocked()
	e.rawTerm = ""
	e.applyTermLocked()
	e.unlockAndNotify()
}

// UpdateFilter sets the selection of one filter. An empty value removes
// the constraint. Use SetDateRange for the date range.
func (e *Engine) UpdateFilter(key, value string) {
	if key == panelsearch.KeyDateRange {
		e.logger.Warn("date range must be set with SetDateRange", "value", value)
		return
	}
	if _, ok := e.desc.Group(key); !ok {
		if _, ok := e.desc.CustomFilters[key]; !ok {
			e.logger.Debug("filter key is not bound to any field", "key", key)
		}
	}

	e.mu.Lock()
	e.filters.Set(key, value)
	e.fresh = false
	e.unlockAndNotify()
}

// SetCategory selects a category.
func (e *Engine) SetCategory(value string) {
	e.UpdateFilter(panelsearch.KeyCategory, value)
}

// SetStatus selects a status such as "true" or "false".
func (e *Engine) SetStatus(value string) {
	e.UpdateFilter(panelsearch.KeyStatus, value)
}

// SetDateRange sets the inclusive date boundaries. Either may be empty.
func (e *Engine) SetDateRange(start, end string) {
	e.mu.Lock()
	e.filters.DateRange = panelsearch.DateRange{Start: start, End: end}
	e.fresh = false
	e.unlockAndNotify()
}

// ClearFilter resets one filter. panelsearch.KeyDateRange clears the date range.
func (e *Engine) ClearFilter(key string) {
	e.mu.Lock()
	e.filters.Clear(key)
	e.fresh = false
	e.unlockAndNotify()
}

// ClearAllFilters resets every filter and the search term.
func (e *Engine) ClearAllFilters() {
	e.mu.Lock()
	e.cancelLocked()
	e.filters = panelsearch.Filters{}
	e.fresh = false
	e.rawTerm = ""
	e.applyTermLocked()
	e.unlockAndNotify()
}

// SetRecords replaces the collection, e.g. after a reload. Filters and
// the search term are kept.
func (e *Engine) SetRecords(records []panelsearch.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Replace(records)
	e.fresh = false
}

// FilteredData returns the records passing the search term and every
// filter, in collection order. The slice is shared with later calls until
// the state changes; callers must not modify it.
func (e *Engine) FilteredData() []panelsearch.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filteredLocked()
}

// SearchStats summarizes the current filtering.
func (e *Engine) SearchStats() panelsearch.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	filtered := e.filteredLocked()
	return panelsearch.NewStats(e.store.Size(), len(filtered), e.activeSearchLocked(), e.filters.Active())
}

// GetSearchMatches lists the search fields of record that contain the
// current term, highlighted. It is empty while no term is active.
func (e *Engine) GetSearchMatches(record panelsearch.Record) []panelsearch.FieldMatch {
	e.mu.Lock()
	term := e.term
	e.mu.Unlock()

	matches := inmemory.NewMatcher(term, e.opts.minLength).FieldMatches(record, e.desc.SearchFields)
	if matches == nil {
		return []panelsearch.FieldMatch{}
	}
	return matches
}

// ExportFilters captures the search term and filters.
func (e *Engine) ExportFilters() panelsearch.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exportLocked()
}

// ImportFilters restores a state captured by ExportFilters. The term
// applies at once, without debouncing.
func (e *Engine) ImportFilters(snap panelsearch.Snapshot) {
	var filters panelsearch.Filters
	for k, v := range snap.Filters.Values {
		if k != panelsearch.KeyDateRange {
			filters.Set(k, v)
		}
	}
	filters.DateRange = snap.Filters.DateRange

	e.mu.Lock()
	e.cancelLocked()
	e.filters = filters
	e.fresh = false
	e.rawTerm = snap.SearchTerm
	e.applyTermLocked()
	e.unlockAndNotify()
}

// FilterExpressions returns the structured filters as expressions, so
// the same state can be evaluated by another panelsearch.Searcher.
func (e *Engine) FilterExpressions() []panelsearch.Expression {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filterExpressionsLocked()
}

// Search implements panelsearch.Searcher. It runs query once against the
// collection under the current filters, leaving the engine state as is.
func (e *Engine) Search(ctx context.Context, query string, opts ...panelsearch.SearchOption) (*panelsearch.Results, error) {
	exprs := e.FilterExpressions()

	all := make([]panelsearch.SearchOption, 0, len(exprs)+len(opts)+2)
	all = append(all,
		panelsearch.WithFields(e.desc.SearchFields...),
		panelsearch.WithMinSearchLength(e.opts.minLength),
	)
	for _, expr := range exprs {
		all = append(all, expr)
	}
	all = append(all, opts...)
	return e.store.Search(ctx, query, all...)
}

// Close cancels a pending debounce. Later term updates apply at once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.closed = true
	return nil
}

func (e *Engine) cancelLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) applyTermLocked() {
	if e.term != e.rawTerm {
		e.term = e.rawTerm
		e.fresh = false
	}
}

func (e *Engine) exportLocked() panelsearch.Snapshot {
	return panelsearch.Snapshot{
		SearchTerm: e.rawTerm,
		Filters:    e.filters.Clone(),
	}
}

// unlockAndNotify releases e.mu and reports the new state to the
// change callback.
func (e *Engine) unlockAndNotify() {
	if e.opts.onChange == nil {
		e.mu.Unlock()
		return
	}
	snap := e.exportLocked()
	e.mu.Unlock()
	e.opts.onChange(snap)
}

func (e *Engine) activeSearchLocked() bool {
	return e.desc.Searchable() && inmemory.NewMatcher(e.term, e.opts.minLength).Active()
}

func (e *Engine) filteredLocked() []panelsearch.Record {
	if !e.fresh {
		exprs := append([]panelsearch.Expression{
			panelsearch.Match(e.term, e.opts.minLength, e.desc.SearchFields...),
		}, e.filterExpressionsLocked()...)
		e.filtered = inmemory.Apply(e.store.Records(), exprs...)
		e.fresh = true
	}
	return e.filtered
}

func (e *Engine) filterExpressionsLocked() []panelsearch.Expression {
	keys := e.filters.Keys()
	exprs := make([]panelsearch.Expression, 0, len(keys)+1)
	for _, key := range keys {
		value := e.filters.Values[key]
		if pred, ok := e.desc.CustomFilters[key]; ok && pred != nil {
			exprs = append(exprs, panelsearch.Custom(key, value, pred))
			continue
		}
		group, ok := e.desc.Group(key)
		if !ok || group.Field == "" {
			continue
		}
		if group.Match == filterconfig.MatchBoolean {
			exprs = append(exprs, panelsearch.Bool(group.Field, value))
		} else {
			exprs = append(exprs, panelsearch.Eq(group.Field, value))
		}
	}

	if dr := e.filters.DateRange; !dr.IsZero() {
		if field := e.desc.DateRangeField(); field != "" {
			exprs = append(exprs, panelsearch.Between(field, dr.Start, dr.End))
		}
	}
	return exprs
}
