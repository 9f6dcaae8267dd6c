// Package query builds and runs in-process queries over record slices:
// composable predicates, allow-listed orderings, projections, aggregates
// and group counts.
//
// Every record type gets a Schema: an explicit table of named field
// accessors and sort keys. Field names are checked against that table
// when a predicate, projection or aggregate is built, so a typo fails
// immediately with ErrUnknownField instead of silently matching nothing.
//
// Nothing here holds state between calls. Each operation is a pure
// function of its inputs.
package query

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrFieldType        = errors.New("operand does not match field type")
	ErrUnknownAggregate = errors.New("unknown aggregate function")
)

// Field is a typed accessor from a record to one of its values.
type Field[R any] struct {
	Name string
	Kind Kind
	get  func(R) Value
}

// Schema is the lookup table of fields and sort keys for records of type R.
type Schema[R any] struct {
	name   string
	fields map[string]Field[R]
	orders map[string]func(a, b R) int
}

// NewSchema returns an empty schema. name is used in error messages.
func NewSchema[R any](name string) *Schema[R] {
	return &Schema[R]{
		name:   name,
		fields: make(map[string]Field[R]),
		orders: make(map[string]func(a, b R) int),
	}
}

func (s *Schema[R]) IntField(name string, fn func(R) int64) *Schema[R] {
	return s.add(Field[R]{Name: name, Kind: KindInt, get: func(r R) Value { return IntValue(fn(r)) }})
}

func (s *Schema[R]) StringField(name string, fn func(R) string) *Schema[R] {
	return s.add(Field[R]{Name: name, Kind: KindString, get: func(r R) Value { return StringValue(fn(r)) }})
}

func (s *Schema[R]) TimeField(name string, fn func(R) time.Time) *Schema[R] {
	return s.add(Field[R]{Name: name, Kind: KindTime, get: func(r R) Value { return TimeValue(fn(r)) }})
}

func (s *Schema[R]) add(f Field[R]) *Schema[R] {
	s.fields[f.Name] = f
	return s
}

// Sortable allow-lists key as an ordering on field. A leading "-" on key
// sorts descending. Registering an unknown field panics: schemas are
// built once at init time.
func (s *Schema[R]) Sortable(key, field string) *Schema[R] {
	f, err := s.Field(field)
	if err != nil {
		panic(err)
	}
	desc := len(key) > 0 && key[0] == '-'
	s.orders[key] = func(a, b R) int {
		c := compareValues(f.get(a), f.get(b))
		if desc {
			return -c
		}
		return c
	}
	return s
}

// Field looks up a field by name.
func (s *Schema[R]) Field(name string) (Field[R], error) {
	f, ok := s.fields[name]
	if !ok {
		return Field[R]{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.name, name)
	}
	return f, nil
}

// CanSort reports whether key is on the ordering allow-list.
func (s *Schema[R]) CanSort(key string) bool {
	_, ok := s.orders[key]
	return ok
}
