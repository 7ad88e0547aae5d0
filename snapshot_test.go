package panelsearch

import (
	"encoding/json"
	"net/url"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestSnapshotMarshalJSON(t *testing.T) {
	snap := Snapshot{SearchTerm: "sopa"}
	snap.Filters.Set(KeyStatus, "true")
	snap.Filters.DateRange = DateRange{Start: "2024-05-01"}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	expected := map[string]interface{}{
		"searchTerm":     "sopa",
		"selectedStatus": "true",
		"dateRange":      map[string]interface{}{"start": "2024-05-01", "end": ""},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := Snapshot{SearchTerm: "ají"}
	snap.Filters.Set(KeyCategory, "4")
	snap.Filters.Set(KeyDiet, "without")
	snap.Filters.DateRange = DateRange{Start: "2024-05-01", End: "2024-05-31"}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var restored Snapshot
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(restored, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", restored, snap)
	}
}

func TestSnapshotUnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		payload   string
		term      string
		values    map[string]string
		dateRange DateRange
		expectErr bool
	}{
		"typed_values": {
			payload: `{"searchTerm": "pollo", "selectedStatus": false, "selectedCategory": 3, "selectedEmbedding": null}`,
			term:    "pollo",
			values:  map[string]string{KeyStatus: "false", KeyCategory: "3"},
		},
		"null_date_range": {
			payload: `{"dateRange": null}`,
		},
		"date_range": {
			payload:   `{"dateRange": {"start": "2024-01-01", "end": "2024-01-31"}}`,
			dateRange: DateRange{Start: "2024-01-01", End: "2024-01-31"},
		},
		"empty_object": {
			payload: `{}`,
		},
		"not_an_object": {
			payload:   `["sopa"]`,
			expectErr: true,
		},
		"nested_filter_value": {
			payload:   `{"selectedCategory": {"id": 3}}`,
			expectErr: true,
		},
		"term_not_a_string": {
			payload:   `{"searchTerm": 12}`,
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var snap Snapshot
			err := json.Unmarshal([]byte(tc.payload), &snap)
			if tc.expectErr {
				if !errors.Is(err, ErrInvalidSnapshot) {
					t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if snap.SearchTerm != tc.term {
				t.Errorf("term = %q, want %q", snap.SearchTerm, tc.term)
			}
			if len(tc.values) > 0 && !reflect.DeepEqual(snap.Filters.Values, tc.values) {
				t.Errorf("values = %v, want %v", snap.Filters.Values, tc.values)
			}
			if len(tc.values) == 0 && len(snap.Filters.Values) != 0 {
				t.Errorf("expected no values, got %v", snap.Filters.Values)
			}
			if snap.Filters.DateRange != tc.dateRange {
				t.Errorf("dateRange = %+v, want %+v", snap.Filters.DateRange, tc.dateRange)
			}
		})
	}
}

func TestSnapshotQuery(t *testing.T) {
	snap := Snapshot{SearchTerm: "arroz con pollo"}
	snap.Filters.Set(KeyStatus, "true")
	snap.Filters.DateRange = DateRange{Start: "2024-05-01", End: "2024-05-31"}

	q := snap.Query()
	if q.Get("q") != "arroz con pollo" || q.Get("start_date") != "2024-05-01" || q.Get("end_date") != "2024-05-31" {
		t.Errorf("unexpected query %s", q.Encode())
	}

	parsed, err := url.ParseQuery(q.Encode())
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if got := ParseQuery(parsed); !reflect.DeepEqual(got, snap) {
		t.Errorf("query round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}

	if len(Snapshot{}.Query()) != 0 {
		t.Error("empty snapshot should produce no parameters")
	}
}
