package query

import "slices"

// Row is one projected record: field name to value.
type Row map[string]any

// Filter returns the records matching where, in input order.
// The result is never nil.
func Filter[R any](records []R, where Predicate[R]) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if where.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many records match where.
func Count[R any](records []R, where Predicate[R]) int {
	n := 0
	for _, r := range records {
		if where.Match(r) {
			n++
		}
	}
	return n
}

// Exists reports whether any record matches where.
func Exists[R any](records []R, where Predicate[R]) bool {
	return slices.ContainsFunc(records, where.Match)
}

// Sort returns a stably sorted copy of records. A key outside the
// allow-list leaves the input order untouched; it is never an error.
func (s *Schema[R]) Sort(records []R, key string) []R {
	out := slices.Clone(records)
	if out == nil {
		out = []R{}
	}
	if cmp, ok := s.orders[key]; ok {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// Execute filters records by where and orders the result by orderKey.
func (s *Schema[R]) Execute(records []R, where Predicate[R], orderKey string) []R {
	return s.Sort(Filter(records, where), orderKey)
}

// First returns the first record under orderKey. An empty or unknown
// key means input order.
func (s *Schema[R]) First(records []R, orderKey string) (R, bool) {
	sorted := s.Sort(records, orderKey)
	if len(sorted) == 0 {
		var zero R
		return zero, false
	}
	return sorted[0], true
}

// Last returns the last record under orderKey.
func (s *Schema[R]) Last(records []R, orderKey string) (R, bool) {
	sorted := s.Sort(records, orderKey)
	if len(sorted) == 0 {
		var zero R
		return zero, false
	}
	return sorted[len(sorted)-1], true
}

// Project narrows each record to the named fields, keeping record order.
// Every name is checked before any record is touched.
func (s *Schema[R]) Project(records []R, fields ...string) ([]Row, error) {
	fs, err := s.lookup(fields)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		row := make(Row, len(fs))
		for _, f := range fs {
			row[f.Name] = f.get(r).Any()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Values returns a flat list of one field's values.
func (s *Schema[R]) Values(records []R, field string) ([]any, error) {
	f, err := s.Field(field)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(records))
	for _, r := range records {
		out = append(out, f.get(r).Any())
	}
	return out, nil
}

func (s *Schema[R]) lookup(names []string) ([]Field[R], error) {
	fs := make([]Field[R], 0, len(names))
	for _, n := range names {
		f, err := s.Field(n)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}
