package engine

import (
	"log/slog"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
)

// Option configures an Engine.
type Option interface {
	apply(*options)
}

type options struct {
	delay      time.Duration
	minLength  int
	scheduler  Scheduler
	logger     *slog.Logger
	onChange   func(panelsearch.Snapshot)
	onDebounce func(term string)
}

func defaultOptions() options {
	return options{
		delay:     panelsearch.DefaultDebounceDelay,
		minLength: panelsearch.DefaultMinSearchLength,
		scheduler: timeScheduler{},
	}
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithDebounceDelay sets how long the search term must stay unchanged
// before it filters. Zero or a negative delay applies every term at once.
func WithDebounceDelay(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.delay = d
	})
}

// WithMinSearchLength sets the shortest term that filters anything.
func WithMinSearchLength(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.minLength = n
		}
	})
}

// WithScheduler replaces the timer source used for debouncing.
func WithScheduler(s Scheduler) Option {
	return optionFunc(func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	})
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithOnChange registers a callback invoked with the exported state after
// every change to the search term or the filters. It runs without any
// engine lock held, so it may call back into the engine.
func WithOnChange(fn func(panelsearch.Snapshot)) Option {
	return optionFunc(func(o *options) {
		o.onChange = fn
	})
}

// WithOnDebounce registers a callback invoked when a debounced term is applied.
func WithOnDebounce(fn func(term string)) Option {
	return optionFunc(func(o *options) {
		o.onDebounce = fn
	})
}
