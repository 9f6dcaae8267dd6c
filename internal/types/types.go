// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, query and report can all import types without
// depending on each other.
package types

import "time"

// Course is a teachable subject. A course owns zero or more students;
// deleting it deletes them too.
//
// CreatedAt is stamped by the store on creation and never changes after.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"       validate:"required,max=100"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. Age is bounded to 1..120, email is optional but must look
//     like an address when given.
//
// Course is filled in by the store on reads (the equivalent of a join),
// so callers can reach course.title without a second lookup. It is
// ignored on writes; CourseID is the source of truth.
type Student struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"      validate:"required,max=100"`
	Age        int       `json:"age"       validate:"required,min=1,max=120"`
	Email      string    `json:"email"     validate:"omitempty,email"`
	CourseID   int64     `json:"course_id" validate:"required"`
	Course     *Course   `json:"course,omitempty" validate:"-"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CourseTitle returns the title of the related course, or "" when the
// relation has not been loaded.
func (s Student) CourseTitle() string {
	if s.Course == nil {
		return ""
	}
	return s.Course.Title
}
