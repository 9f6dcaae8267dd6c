package report

import (
	"fmt"

	"github.com/aanand-mishra/queryset-api/internal/query"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// Demo walks through every query building block against the live data:
// reads, lookups, OR / NOT composition, aggregates, annotation, flat
// value lists, existence checks and ordering.
type Demo struct {
	AllStudents      []query.Row             `json:"all_students"`
	Count            int                     `json:"count"`
	First            *types.Student          `json:"first"`
	Last             *types.Student          `json:"last"`
	AgeGt20          []query.Row             `json:"age_gt_20"`
	NameContainsA    []query.Row             `json:"name_contains_a"`
	AgeRange         []query.Row             `json:"age_range"`
	YoungOrOld       []query.Row             `json:"q_or"`
	NotPython        []query.Row             `json:"q_not"`
	Aggregates       map[string]query.Number `json:"aggregates"`
	CoursesAnnotated []query.Row             `json:"courses_annotated"`
	Values           []query.Row             `json:"values"`
	ValuesList       []any                   `json:"values_list"`
	HasStudents      bool                    `json:"has_students"`
	HasYoung         bool                    `json:"has_young"`
	OrderedAsc       []query.Row             `json:"ordered_asc"`
	OrderedDesc      []query.Row             `json:"ordered_desc"`
}

// demoBuilder collects the first error so the demo reads as a straight
// list of queries.
type demoBuilder struct {
	students []types.Student
	err      error
}

func (b *demoBuilder) pred(p query.Predicate[types.Student], err error) query.Predicate[types.Student] {
	if err != nil && b.err == nil {
		b.err = err
	}
	return p
}

func (b *demoBuilder) rows(records []types.Student, fields ...string) []query.Row {
	rows, err := query.Students.Project(records, fields...)
	if err != nil && b.err == nil {
		b.err = err
	}
	return rows
}

func (b *demoBuilder) where(p query.Predicate[types.Student], fields ...string) []query.Row {
	return b.rows(query.Filter(b.students, p), fields...)
}

func (s *Service) Demo() (Demo, error) {
	students, err := s.store.GetStudents()
	if err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", err)
	}
	courses, err := s.annotatedCourses()
	if err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", err)
	}

	b := &demoBuilder{students: students}
	st := query.Students

	var d Demo

	// Basic reads
	d.AllStudents = b.rows(students, "id", "name", "age", "course.title")
	d.Count = len(students)
	d.First = optional(st.First(students, ""))
	d.Last = optional(st.Last(students, ""))

	// Lookups
	d.AgeGt20 = b.where(b.pred(st.Gt("age", 20)), "name", "age")
	d.NameContainsA = b.where(b.pred(st.Contains("name", "a")), "name", "age")
	d.AgeRange = b.where(b.pred(st.Between("age", 18, 23)), "name", "age")

	// OR / NOT
	young := b.pred(st.Lt("age", 20))
	old := b.pred(st.Gt("age", 24))
	d.YoungOrOld = b.where(query.Or(young, old), "name", "age")
	python := b.pred(st.Eq("course.title", "Python"))
	d.NotPython = b.where(query.Not(python), "name", "age", "course.title")

	// Aggregation
	d.Aggregates, err = st.Aggregate(students, ageStats...)
	if err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", err)
	}

	// Annotation
	d.CoursesAnnotated, err = summarySchema.Project(courses, "title", "student_count")
	if err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", err)
	}

	// values / values_list
	d.Values = b.rows(students, "name", "age")
	d.ValuesList, err = st.Values(students, "name")
	if err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", err)
	}

	// exists
	d.HasStudents = query.Exists(students, query.All[types.Student]())
	d.HasYoung = query.Exists(students, b.pred(st.Lt("age", 18)))

	// Ordering
	d.OrderedAsc = b.rows(st.Sort(students, "age"), "name", "age")
	d.OrderedDesc = b.rows(st.Sort(students, "-age"), "name", "age")

	if b.err != nil {
		return Demo{}, fmt.Errorf("Demo: %w", b.err)
	}
	return d, nil
}
