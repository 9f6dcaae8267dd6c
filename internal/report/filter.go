package report

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/aanand-mishra/queryset-api/internal/query"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// DefaultStudentOrder applies when the caller sends no order at all.
const DefaultStudentOrder = "name"

// StudentFilter holds the raw, optional refinements of a student listing
// exactly as they arrive in a query string. Nothing here is validated up
// front: values that do not parse are simply not applied.
type StudentFilter struct {
	Name   string // case-insensitive substring of the name
	MinAge string // inclusive lower bound, digits only
	MaxAge string // inclusive upper bound, digits only
	Course string // course id, digits only
	Order  string // one of the student order keys
}

// ParseStudentFilter reads ?name, ?min_age, ?max_age, ?course and ?order.
func ParseStudentFilter(v url.Values) StudentFilter {
	f := StudentFilter{
		Name:   strings.TrimSpace(v.Get("name")),
		MinAge: strings.TrimSpace(v.Get("min_age")),
		MaxAge: strings.TrimSpace(v.Get("max_age")),
		Course: strings.TrimSpace(v.Get("course")),
		Order:  strings.TrimSpace(v.Get("order")),
	}
	if !v.Has("order") {
		f.Order = DefaultStudentOrder
	}
	return f
}

// Predicate composes the filter into a single AND-ed predicate.
// Malformed numbers are dropped, not reported.
func (f StudentFilter) Predicate() (query.Predicate[types.Student], error) {
	var preds []query.Predicate[types.Student]

	add := func(p query.Predicate[types.Student], err error) error {
		if err != nil {
			return err
		}
		preds = append(preds, p)
		return nil
	}

	if f.Name != "" {
		if err := add(query.Students.Contains("name", f.Name)); err != nil {
			return query.Predicate[types.Student]{}, err
		}
	}
	if n, ok := digits(f.MinAge); ok {
		if err := add(query.Students.Gte("age", n)); err != nil {
			return query.Predicate[types.Student]{}, err
		}
	}
	if n, ok := digits(f.MaxAge); ok {
		if err := add(query.Students.Lte("age", n)); err != nil {
			return query.Predicate[types.Student]{}, err
		}
	}
	if n, ok := digits(f.Course); ok {
		if err := add(query.Students.Eq("course.id", n)); err != nil {
			return query.Predicate[types.Student]{}, err
		}
	}

	return query.And(preds...), nil
}

// digits parses s only when it is a non-empty run of ASCII digits.
// Signs, spaces and decimals all count as "not a number".
func digits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
