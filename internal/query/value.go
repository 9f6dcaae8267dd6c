package query

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Kind is the type of value a field yields.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Value is a single field value. Only the member matching kind is set.
type Value struct {
	kind Kind
	i    int64
	s    string
	t    time.Time
}

func IntValue(v int64) Value      { return Value{kind: KindInt, i: v} }
func StringValue(v string) Value  { return Value{kind: KindString, s: v} }
func TimeValue(v time.Time) Value { return Value{kind: KindTime, t: v} }

func (v Value) Kind() Kind { return v.kind }

// Any unwraps the value for encoding into projections.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// compareValues orders two values of the same kind.
func compareValues(a, b Value) int {
	switch a.kind {
	case KindInt:
		return cmp.Compare(a.i, b.i)
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindTime:
		return a.t.Compare(b.t)
	default:
		return 0
	}
}

// coerce converts a caller-supplied operand into a Value of kind k.
func coerce(field string, k Kind, operand any) (Value, error) {
	switch k {
	case KindInt:
		switch n := operand.(type) {
		case int:
			return IntValue(int64(n)), nil
		case int32:
			return IntValue(int64(n)), nil
		case int64:
			return IntValue(n), nil
		}
	case KindString:
		if s, ok := operand.(string); ok {
			return StringValue(s), nil
		}
	case KindTime:
		if t, ok := operand.(time.Time); ok {
			return TimeValue(t), nil
		}
	}
	return Value{}, fmt.Errorf("%w: %s is %s, got %T", ErrFieldType, field, k, operand)
}

func fieldTypeError(field string, k Kind, use string) error {
	return fmt.Errorf("%w: %s is %s, cannot use it for %s", ErrFieldType, field, k, use)
}
