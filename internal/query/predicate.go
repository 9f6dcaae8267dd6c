package query

import "strings"

type op uint8

const (
	opAll op = iota // zero value: matches every record
	opEq
	opGt
	opGte
	opLt
	opLte
	opContains
	opRange
	opAnd
	opOr
	opNot
)

// Predicate is a lazily evaluated boolean test over records of type R.
// It is a small tagged tree: leaves compare one field against typed
// operands, inner nodes combine children with AND, OR or NOT.
//
// The zero Predicate matches everything. Predicates are immutable values
// and can be reused and nested freely.
type Predicate[R any] struct {
	op     op
	field  Field[R]
	lo, hi Value
	args   []Predicate[R]
}

// All returns the predicate that matches every record.
func All[R any]() Predicate[R] { return Predicate[R]{} }

// And matches when every p matches. And() matches everything.
func And[R any](ps ...Predicate[R]) Predicate[R] {
	return Predicate[R]{op: opAnd, args: append([]Predicate[R](nil), ps...)}
}

// Or matches when at least one p matches. Or() matches nothing.
func Or[R any](ps ...Predicate[R]) Predicate[R] {
	return Predicate[R]{op: opOr, args: append([]Predicate[R](nil), ps...)}
}

// Not negates p.
func Not[R any](p Predicate[R]) Predicate[R] {
	return Predicate[R]{op: opNot, args: []Predicate[R]{p}}
}

func (s *Schema[R]) Eq(field string, operand any) (Predicate[R], error) {
	return s.compare(opEq, field, operand)
}

func (s *Schema[R]) Gt(field string, operand any) (Predicate[R], error) {
	return s.compare(opGt, field, operand)
}

func (s *Schema[R]) Gte(field string, operand any) (Predicate[R], error) {
	return s.compare(opGte, field, operand)
}

func (s *Schema[R]) Lt(field string, operand any) (Predicate[R], error) {
	return s.compare(opLt, field, operand)
}

func (s *Schema[R]) Lte(field string, operand any) (Predicate[R], error) {
	return s.compare(opLte, field, operand)
}

// Contains is a case-insensitive substring match on a string field.
func (s *Schema[R]) Contains(field, substr string) (Predicate[R], error) {
	f, err := s.Field(field)
	if err != nil {
		return Predicate[R]{}, err
	}
	if f.Kind != KindString {
		return Predicate[R]{}, fieldTypeError(field, f.Kind, "contains")
	}
	return Predicate[R]{op: opContains, field: f, lo: StringValue(strings.ToLower(substr))}, nil
}

// Between matches lo <= field <= hi.
func (s *Schema[R]) Between(field string, lo, hi any) (Predicate[R], error) {
	f, err := s.Field(field)
	if err != nil {
		return Predicate[R]{}, err
	}
	l, err := coerce(field, f.Kind, lo)
	if err != nil {
		return Predicate[R]{}, err
	}
	h, err := coerce(field, f.Kind, hi)
	if err != nil {
		return Predicate[R]{}, err
	}
	return Predicate[R]{op: opRange, field: f, lo: l, hi: h}, nil
}

func (s *Schema[R]) compare(o op, field string, operand any) (Predicate[R], error) {
	f, err := s.Field(field)
	if err != nil {
		return Predicate[R]{}, err
	}
	v, err := coerce(field, f.Kind, operand)
	if err != nil {
		return Predicate[R]{}, err
	}
	return Predicate[R]{op: o, field: f, lo: v}, nil
}

// Match evaluates p against r.
func (p Predicate[R]) Match(r R) bool {
	switch p.op {
	case opAll:
		return true
	case opAnd:
		for _, a := range p.args {
			if !a.Match(r) {
				return false
			}
		}
		return true
	case opOr:
		for _, a := range p.args {
			if a.Match(r) {
				return true
			}
		}
		return false
	case opNot:
		return !p.args[0].Match(r)
	}

	v := p.field.get(r)
	switch p.op {
	case opEq:
		return compareValues(v, p.lo) == 0
	case opGt:
		return compareValues(v, p.lo) > 0
	case opGte:
		return compareValues(v, p.lo) >= 0
	case opLt:
		return compareValues(v, p.lo) < 0
	case opLte:
		return compareValues(v, p.lo) <= 0
	case opContains:
		return strings.Contains(strings.ToLower(v.s), p.lo.s)
	case opRange:
		return compareValues(v, p.lo) >= 0 && compareValues(v, p.hi) <= 0
	default:
		return false
	}
}
