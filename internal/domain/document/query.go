package document

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// CreateTimeField orders by the store-maintained creation time rather than a
// document field.
const CreateTimeField = "__create_time__"

// Filter is an equality condition on a top-level field.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Query selects documents from a single collection.
type Query struct {
	Collection string    `json:"collection"`
	Filters    []Filter  `json:"filters,omitempty"`
	OrderBy    string    `json:"order_by,omitempty"`
	Direction  Direction `json:"direction,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Collection starts a query over every document of a collection.
func Collection(name string) Query {
	return Query{Collection: name}
}

// Where adds an equality filter.
func (q Query) Where(field string, value any) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// Order sets the sort field and direction.
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Take caps the number of returned documents.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// Validate checks the query shape.
func (q Query) Validate() error {
	if err := ValidateCollection(q.Collection); err != nil {
		return err
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	switch q.Direction {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("invalid direction %q", q.Direction)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("filter field is required")
		}
	}
	return nil
}

// Apply filters, orders and limits docs according to the query. Documents are
// first put in creation order (ties broken by id) so results are stable.
func (q Query) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Collection != "" && d.Collection != q.Collection {
			continue
		}
		if q.matches(d) {
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreateTime.Equal(out[j].CreateTime) {
			return out[i].CreateTime.Before(out[j].CreateTime)
		}
		return out[i].ID < out[j].ID
	})

	if q.OrderBy != "" && q.OrderBy != CreateTimeField {
		sort.SliceStable(out, func(i, j int) bool {
			vi, iok := out[i].Fields[q.OrderBy]
			vj, jok := out[j].Fields[q.OrderBy]
			// Missing values sort last in both directions.
			if !iok || !jok {
				return iok && !jok
			}
			c := compareValues(vi, vj)
			if q.Direction == Desc {
				return c > 0
			}
			return c < 0
		})
	} else if q.Direction == Desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (q Query) matches(d Document) bool {
	for _, f := range q.Filters {
		v, ok := d.Fields[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

// String renders the query for logs.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Collection)
	for _, f := range q.Filters {
		fmt.Fprintf(&b, " where %s==%v", f.Field, f.Value)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " order by %s %s", q.OrderBy, q.Direction)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " limit %d", q.Limit)
	}
	return b.String()
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers numerically, timestamps chronologically and
// everything else by its string form.
func compareValues(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
