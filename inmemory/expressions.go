package inmemory

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
)

// predicate is a compiled expression. A nil predicate constrains nothing.
type predicate func(panelsearch.Record) bool

// Apply returns the records that satisfy every expression, in input order.
// records is never modified.
func Apply(records []panelsearch.Record, exprs ...panelsearch.Expression) []panelsearch.Record {
	out := make([]panelsearch.Record, 0, len(records))
	if len(records) == 0 {
		return out
	}

	match := Compile(exprs...)
	for _, record := range records {
		if match(record) {
			out = append(out, record)
		}
	}
	return out
}

// Compile turns expressions into a single reusable filter that ANDs them.
// Search terms are normalized and date boundaries parsed once here.
func Compile(exprs ...panelsearch.Expression) func(panelsearch.Record) bool {
	p := compileAnd(exprs)
	if p == nil {
		return func(panelsearch.Record) bool { return true }
	}
	return p
}

func compileAnd(exprs []panelsearch.Expression) predicate {
	preds := compileAll(exprs)
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return func(r panelsearch.Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func compileAll(exprs []panelsearch.Expression) []predicate {
	preds := make([]predicate, 0, len(exprs))
	for _, e := range exprs {
		if p := compile(e); p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

func compile(expr panelsearch.Expression) predicate {
	switch e := expr.(type) {
	case panelsearch.AndExpr:
		return compileAnd(e.Exprs)
	case panelsearch.OrExpr:
		return compileOr(e)
	case panelsearch.NotExpr:
		return compileNot(e)
	case panelsearch.MatchExpr:
		return compileMatch(e)
	case panelsearch.EqExpr:
		return compileEq(e)
	case panelsearch.NeExpr:
		return compileNe(e)
	case panelsearch.BoolExpr:
		return compileBool(e)
	case panelsearch.DateRangeExpr:
		return compileDateRange(e)
	case panelsearch.RangeExpr:
		return compileRange(e)
	case panelsearch.ExistsExpr:
		return compileExists(e)
	case panelsearch.CustomExpr:
		return compileCustom(e)
	default:
		// Unknown expression type, do not filter out
		return nil
	}
}

func compileOr(e panelsearch.OrExpr) predicate {
	preds := compileAll(e.Exprs)
	if len(preds) < len(e.Exprs) {
		// one branch constrains nothing, so the whole OR passes
		return nil
	}
	return func(r panelsearch.Record) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

func compileNot(e panelsearch.NotExpr) predicate {
	inner := compile(e.Inner)
	if inner == nil {
		return nil
	}
	return func(r panelsearch.Record) bool {
		return !inner(r)
	}
}

func compileMatch(e panelsearch.MatchExpr) predicate {
	m := NewMatcher(e.Term, e.MinLength)
	if !m.Active() || len(e.Fields) == 0 {
		return nil
	}
	fields := e.Fields
	return func(r panelsearch.Record) bool {
		return m.Matches(r, fields)
	}
}

func compileEq(e panelsearch.EqExpr) predicate {
	if isEmptyValue(e.Value) {
		return nil
	}
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		return ok && compareEqual(v, e.Value)
	}
}

func compileNe(e panelsearch.NeExpr) predicate {
	if isEmptyValue(e.Value) {
		return nil
	}
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		return !ok || !compareEqual(v, e.Value)
	}
}

func compileBool(e panelsearch.BoolExpr) predicate {
	want, ok := panelsearch.ParseBool(e.Value)
	if !ok {
		return nil
	}
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		if !ok {
			return false
		}
		got, ok := toBool(v)
		return ok && got == want
	}
}

func compileDateRange(e panelsearch.DateRangeExpr) predicate {
	if e.Range.IsZero() {
		return nil
	}
	start, end := e.Range.Bounds()
	if start == nil && end == nil {
		slog.Warn("ignoring unparseable date range", "field", e.Field, "start", e.Range.Start, "end", e.Range.End)
		return nil
	}
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		if !ok {
			return false
		}
		t, ok := toTime(v)
		if !ok {
			return false
		}
		if start != nil && t.Before(*start) {
			return false
		}
		if end != nil && t.After(*end) {
			return false
		}
		return true
	}
}

func compileRange(e panelsearch.RangeExpr) predicate {
	if e.Min == nil && e.Max == nil {
		return nil
	}
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		if !ok || v == nil {
			return false
		}
		if e.Min != nil && compareValues(v, e.Min) < 0 {
			return false
		}
		if e.Max != nil && compareValues(v, e.Max) > 0 {
			return false
		}
		return true
	}
}

func compileExists(e panelsearch.ExistsExpr) predicate {
	return func(r panelsearch.Record) bool {
		v, ok := Lookup(r, e.Field)
		return ok && v != nil
	}
}

func compileCustom(e panelsearch.CustomExpr) predicate {
	if e.Value == "" || e.Predicate == nil {
		return nil
	}
	return func(r panelsearch.Record) (pass bool) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Warn("custom filter panicked", "key", e.Key, "panic", rec)
				pass = false
			}
		}()
		return e.Predicate(r, e.Value)
	}
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// compareEqual checks if two values are equal.
func compareEqual(v1, v2 interface{}) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}

	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			return f1 == f2
		}
	}

	// Fall back to string comparison so "3" selects a category id of 3
	return fmt.Sprintf("%v", v1) == fmt.Sprintf("%v", v2)
}

// compareValues orders two values, numerically when both are numbers.
func compareValues(v1, v2 interface{}) int {
	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			switch {
			case f1 < f2:
				return -1
			case f1 > f2:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}

func toBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		return panelsearch.ParseBool(val)
	}
	if f, ok := toFloat64(v); ok && (f == 0 || f == 1) {
		return f == 1, true
	}
	return false, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		return panelsearch.ParseDate(val)
	default:
		return time.Time{}, false
	}
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case interface{ Float64() (float64, error) }:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

