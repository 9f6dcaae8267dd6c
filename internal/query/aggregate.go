package query

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Func names an aggregate function.
type Func string

const (
	FuncCount Func = "count"
	FuncAvg   Func = "avg"
	FuncMin   Func = "min"
	FuncMax   Func = "max"
	FuncSum   Func = "sum"
)

// Aggregate binds a function to a field under a result name, e.g.
// {Name: "avg_age", Func: FuncAvg, Field: "age"}.
type Aggregate struct {
	Name  string
	Func  Func
	Field string
}

// Number is an aggregate result. Valid is false when there was nothing
// to aggregate (avg/min/max/sum over no records); it encodes as null.
type Number struct {
	Value float64
	Valid bool
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n Number) String() string {
	if !n.Valid {
		return "<none>"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Aggregate computes every requested aggregate over records.
// Unknown fields and non-numeric fields fail before any work is done.
// Count is always valid; it counts records and ignores Field when empty.
func (s *Schema[R]) Aggregate(records []R, aggs ...Aggregate) (map[string]Number, error) {
	fields := make([]Field[R], len(aggs))
	for i, a := range aggs {
		switch a.Func {
		case FuncCount:
			if a.Field == "" {
				continue
			}
			f, err := s.Field(a.Field)
			if err != nil {
				return nil, err
			}
			fields[i] = f
		case FuncAvg, FuncMin, FuncMax, FuncSum:
			f, err := s.Field(a.Field)
			if err != nil {
				return nil, err
			}
			if f.Kind != KindInt {
				return nil, fieldTypeError(a.Field, f.Kind, string(a.Func))
			}
			fields[i] = f
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, a.Func)
		}
	}

	out := make(map[string]Number, len(aggs))
	for i, a := range aggs {
		if a.Func == FuncCount {
			out[a.Name] = Number{Value: float64(len(records)), Valid: true}
			continue
		}
		if len(records) == 0 {
			out[a.Name] = Number{}
			continue
		}

		f := fields[i]
		first := f.get(records[0]).i
		sum, lo, hi := int64(0), first, first
		for _, r := range records {
			v := f.get(r).i
			sum += v
			lo = min(lo, v)
			hi = max(hi, v)
		}

		var v float64
		switch a.Func {
		case FuncAvg:
			v = float64(sum) / float64(len(records))
		case FuncMin:
			v = float64(lo)
		case FuncMax:
			v = float64(hi)
		case FuncSum:
			v = float64(sum)
		}
		out[a.Name] = Number{Value: v, Valid: true}
	}
	return out, nil
}

// Group is one bucket of a group count.
type Group struct {
	Key   any `json:"key"`
	Count int `json:"count"`
}

// GroupCount counts records per distinct value of field. Groups come back
// in order of first appearance.
func (s *Schema[R]) GroupCount(records []R, field string) ([]Group, error) {
	f, err := s.Field(field)
	if err != nil {
		return nil, err
	}

	index := make(map[any]int)
	groups := make([]Group, 0)
	for _, r := range records {
		k := f.get(r).Any()
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group{Key: k, Count: 1})
	}
	return groups, nil
}
