// Package report implements the read-side entry points behind the HTTP
// layer: the filtered student list, the annotated course list, the
// course detail page, the dashboard and the query demo bundle.
//
// Each call takes one snapshot of the store and runs filter → sort →
// aggregate over it synchronously. Nothing is remembered between calls.
package report

import (
	"fmt"

	"github.com/aanand-mishra/queryset-api/internal/query"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// Service answers report queries against a store.
type Service struct {
	store storage.Storage
}

func New(store storage.Storage) *Service {
	return &Service{store: store}
}

// StudentList is a filtered, ordered listing plus its size.
type StudentList struct {
	Students []types.Student `json:"students"`
	Count    int             `json:"count"`
}

// CourseSummary is a course annotated with how many students it has.
type CourseSummary struct {
	types.Course
	StudentCount int `json:"student_count"`
}

// CourseStats summarises the ages of one course's students.
// The age figures are null for a course with no students.
type CourseStats struct {
	AvgAge query.Number `json:"avg_age"`
	MaxAge query.Number `json:"max_age"`
	MinAge query.Number `json:"min_age"`
	Total  int          `json:"total"`
}

// CourseDetail is one course with its students ordered by name.
type CourseDetail struct {
	Course   types.Course    `json:"course"`
	Students []types.Student `json:"students"`
	Stats    CourseStats     `json:"stats"`
}

// summarySchema lets annotated courses be sorted and projected by the
// same machinery as plain records.
var summarySchema = query.NewSchema[CourseSummary]("course").
	IntField("id", func(c CourseSummary) int64 { return c.ID }).
	StringField("title", func(c CourseSummary) string { return c.Title }).
	IntField("student_count", func(c CourseSummary) int64 { return int64(c.StudentCount) }).
	Sortable("title", "title").
	Sortable("-student_count", "student_count")

var ageStats = []query.Aggregate{
	{Name: "avg_age", Func: query.FuncAvg, Field: "age"},
	{Name: "max_age", Func: query.FuncMax, Field: "age"},
	{Name: "min_age", Func: query.FuncMin, Field: "age"},
	{Name: "total", Func: query.FuncCount, Field: "id"},
}

// ListStudents applies f to every student. Refinements that do not parse
// and order keys outside the allow-list are ignored.
func (s *Service) ListStudents(f StudentFilter) (StudentList, error) {
	students, err := s.store.GetStudents()
	if err != nil {
		return StudentList{}, fmt.Errorf("ListStudents: %w", err)
	}

	where, err := f.Predicate()
	if err != nil {
		return StudentList{}, fmt.Errorf("ListStudents: %w", err)
	}

	result := query.Students.Execute(students, where, f.Order)
	return StudentList{Students: result, Count: len(result)}, nil
}

// ListCourses returns every course ordered by title with its student count.
func (s *Service) ListCourses() ([]CourseSummary, error) {
	summaries, err := s.annotatedCourses()
	if err != nil {
		return nil, fmt.Errorf("ListCourses: %w", err)
	}
	return summarySchema.Sort(summaries, "title"), nil
}

// annotatedCourses pairs every course with its student count, in store
// order. Courses with no students get a zero count.
func (s *Service) annotatedCourses() ([]CourseSummary, error) {
	courses, err := s.store.GetCourses()
	if err != nil {
		return nil, err
	}
	students, err := s.store.GetStudents()
	if err != nil {
		return nil, err
	}

	groups, err := query.Students.GroupCount(students, "course.id")
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(groups))
	for _, g := range groups {
		counts[g.Key.(int64)] = g.Count
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseSummary{Course: c, StudentCount: counts[c.ID]})
	}
	return out, nil
}

// CourseDetail returns storage.ErrNotFound (wrapped) for an unknown id.
func (s *Service) CourseDetail(id int64) (CourseDetail, error) {
	course, err := s.store.GetCourseByID(id)
	if err != nil {
		return CourseDetail{}, fmt.Errorf("CourseDetail: %w", err)
	}
	students, err := s.store.GetStudents()
	if err != nil {
		return CourseDetail{}, fmt.Errorf("CourseDetail: %w", err)
	}

	inCourse, err := query.Students.Eq("course.id", id)
	if err != nil {
		return CourseDetail{}, fmt.Errorf("CourseDetail: %w", err)
	}
	enrolled := query.Students.Execute(students, inCourse, "name")

	agg, err := query.Students.Aggregate(enrolled, ageStats...)
	if err != nil {
		return CourseDetail{}, fmt.Errorf("CourseDetail: %w", err)
	}

	return CourseDetail{
		Course:   course,
		Students: enrolled,
		Stats: CourseStats{
			AvgAge: agg["avg_age"],
			MaxAge: agg["max_age"],
			MinAge: agg["min_age"],
			Total:  int(agg["total"].Value),
		},
	}, nil
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalStudents int             `json:"total_students"`
	TotalCourses  int             `json:"total_courses"`
	AllStudents   []types.Student `json:"all_students"`
	AllCourses    []CourseSummary `json:"all_courses"`
	AvgAge        query.Number    `json:"avg_age"`
	Oldest        *types.Student  `json:"oldest"`
	Youngest      *types.Student  `json:"youngest"`
}

func (s *Service) Dashboard() (Dashboard, error) {
	courses, err := s.annotatedCourses()
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}
	students, err := s.store.GetStudents()
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}

	agg, err := query.Students.Aggregate(students,
		query.Aggregate{Name: "avg", Func: query.FuncAvg, Field: "age"})
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}

	return Dashboard{
		TotalStudents: len(students),
		TotalCourses:  len(courses),
		AllStudents:   query.Students.Sort(students, "name"),
		AllCourses:    courses,
		AvgAge:        agg["avg"],
		Oldest:        optional(query.Students.First(students, "-age")),
		Youngest:      optional(query.Students.First(students, "age")),
	}, nil
}

func optional(s types.Student, ok bool) *types.Student {
	if !ok {
		return nil
	}
	return &s
}
