package query

import (
	"time"

	"github.com/aanand-mishra/queryset-api/internal/types"
)

// Students is the field table for student records. "course.*" fields
// reach through the student's course, which the store loads on read.
var Students = NewSchema[types.Student]("student").
	IntField("id", func(s types.Student) int64 { return s.ID }).
	StringField("name", func(s types.Student) string { return s.Name }).
	IntField("age", func(s types.Student) int64 { return int64(s.Age) }).
	StringField("email", func(s types.Student) string { return s.Email }).
	IntField("course.id", func(s types.Student) int64 { return s.CourseID }).
	StringField("course.title", types.Student.CourseTitle).
	TimeField("enrolled_at", func(s types.Student) time.Time { return s.EnrolledAt }).
	Sortable("id", "id").
	Sortable("-id", "id").
	Sortable("name", "name").
	Sortable("-name", "name").
	Sortable("age", "age").
	Sortable("-age", "age").
	Sortable("course.title", "course.title").
	Sortable("course__title", "course.title")

// Courses is the field table for course records.
var Courses = NewSchema[types.Course]("course").
	IntField("id", func(c types.Course) int64 { return c.ID }).
	StringField("title", func(c types.Course) string { return c.Title }).
	StringField("description", func(c types.Course) string { return c.Description }).
	TimeField("created_at", func(c types.Course) time.Time { return c.CreatedAt }).
	Sortable("id", "id").
	Sortable("-id", "id").
	Sortable("title", "title").
	Sortable("-title", "title")
