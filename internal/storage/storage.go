// Package storage defines the Storage interface — a contract that any
// record store must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers and reports should not know or care which backend holds the
// records. Two implementations ship with the app:
//
//   - sqlite: a single-file database, used in every real deployment.
//   - memory: an in-process store, handy for tests and demos.
//
// Both enforce the same relationship rules: every student references an
// existing course, and deleting a course deletes its students in one step.
package storage

import (
	"errors"

	"github.com/aanand-mishra/queryset-api/internal/types"
)

var (
	// ErrNotFound is returned when a lookup by id misses.
	ErrNotFound = errors.New("record not found")

	// ErrCourseMissing is returned when a student is written with a
	// course_id that does not exist (or was deleted concurrently).
	ErrCourseMissing = errors.New("referenced course does not exist")
)

// Storage is the record store contract.
// Ids are assigned by the store and are never reused.
type Storage interface {
	// CreateCourse inserts a course and returns its new id.
	CreateCourse(course types.Course) (int64, error)

	// BulkCreateCourses inserts all courses or none of them.
	BulkCreateCourses(courses []types.Course) ([]int64, error)

	// GetCourseByID returns ErrNotFound when no course has that id.
	GetCourseByID(id int64) (types.Course, error)

	// GetCourses returns every course in insertion order.
	GetCourses() ([]types.Course, error)

	// UpdateCourseByID replaces title and description. CreatedAt is kept.
	UpdateCourseByID(id int64, course types.Course) (types.Course, error)

	// DeleteCourseByID removes the course and all of its students and
	// reports how many students went with it.
	DeleteCourseByID(id int64) (int, error)

	// CreateStudent inserts a student and returns its new id.
	CreateStudent(student types.Student) (int64, error)

	// BulkCreateStudents inserts all students or none of them.
	BulkCreateStudents(students []types.Student) ([]int64, error)

	// GetStudentByID returns the student with its Course loaded.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns every student in insertion order, each with
	// its Course loaded. Returns an empty slice (not nil) when empty.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces name, age, email and course.
	// EnrolledAt is kept.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a single student.
	DeleteStudentByID(id int64) error

	// Reset removes every student and course. Used by the seed loader.
	Reset() error
}
