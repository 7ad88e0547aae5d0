package panelsearch

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/cockroachdb/errors"
)

const (
	snapshotTermKey = "searchTerm"

	queryTermKey  = "q"
	queryStartKey = "start_date"
	queryEndKey   = "end_date"
)

// Snapshot is the exported search and filter state of a view.
//
// It encodes to a flat JSON object:
//
//	{"searchTerm": "sopa", "selectedStatus": "true", "dateRange": {"start": "2024-05-01", "end": ""}}
type Snapshot struct {
	SearchTerm string
	Filters    Filters
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Filters.Values)+2)
	for k, v := range s.Filters.Values {
		if v != "" {
			out[k] = v
		}
	}
	out[snapshotTermKey] = s.SearchTerm
	out[KeyDateRange] = s.Filters.DateRange
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Filter values may be strings,
// booleans or numbers; null values are dropped.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithSecondaryError(ErrInvalidSnapshot, err)
	}

	var snap Snapshot
	for key, value := range raw {
		switch key {
		case snapshotTermKey:
			if err := json.Unmarshal(value, &snap.SearchTerm); err != nil {
				return errors.WithSecondaryError(ErrInvalidSnapshot, errors.Wrapf(err, "field %s", key))
			}
		case KeyDateRange:
			if isNull(value) {
				continue
			}
			if err := json.Unmarshal(value, &snap.Filters.DateRange); err != nil {
				return errors.WithSecondaryError(ErrInvalidSnapshot, errors.Wrapf(err, "field %s", key))
			}
		default:
			v, err := scalarString(value)
			if err != nil {
				return errors.WithSecondaryError(ErrInvalidSnapshot, errors.Wrapf(err, "field %s", key))
			}
			snap.Filters.Set(key, v)
		}
	}

	*s = snap
	return nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func scalarString(value json.RawMessage) (string, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		return t.String(), nil
	default:
		return "", errors.Newf("unsupported filter value %s", string(value))
	}
}

// Query encodes the snapshot as URL query parameters.
func (s Snapshot) Query() url.Values {
	q := url.Values{}
	if s.SearchTerm != "" {
		q.Set(queryTermKey, s.SearchTerm)
	}
	for _, k := range s.Filters.Keys() {
		q.Set(k, s.Filters.Values[k])
	}
	if s.Filters.DateRange.Start != "" {
		q.Set(queryStartKey, s.Filters.DateRange.Start)
	}
	if s.Filters.DateRange.End != "" {
		q.Set(queryEndKey, s.Filters.DateRange.End)
	}
	return q
}

// ParseQuery restores a snapshot from URL query parameters produced by Query.
// Only the first value of each parameter is used.
func ParseQuery(q url.Values) Snapshot {
	var snap Snapshot
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		switch key {
		case queryTermKey:
			snap.SearchTerm = values[0]
		case queryStartKey:
			snap.Filters.DateRange.Start = values[0]
		case queryEndKey:
			snap.Filters.DateRange.End = values[0]
		default:
			snap.Filters.Set(key, values[0])
		}
	}
	return snap
}
