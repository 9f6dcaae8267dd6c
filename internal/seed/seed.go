// Package seed loads the sample roster (three courses, eight students)
// into a store. The roster lives in fixtures.yaml and is compiled into
// the binary.
package seed

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

//go:embed fixtures.yaml
var fixtures []byte

var validate = validator.New()

// Fixtures is the decoded shape of a roster file. Students name their
// course by title.
type Fixtures struct {
	Courses []struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"courses"`
	Students []struct {
		Name   string `yaml:"name"`
		Age    int    `yaml:"age"`
		Email  string `yaml:"email"`
		Course string `yaml:"course"`
	} `yaml:"students"`
}

// Result reports what a load inserted.
type Result struct {
	Courses  int
	Students int
}

// Parse decodes a roster document.
func Parse(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("seed.Parse: %w", err)
	}
	return f, nil
}

// Default returns the built-in roster.
func Default() (Fixtures, error) {
	return Parse(fixtures)
}

// Load inserts f into store. With reset it first wipes the store, so
// running it twice leaves exactly one copy of the roster. The whole
// roster is validated before the store is touched: a bad file leaves
// existing data as it was.
func Load(store storage.Storage, f Fixtures, reset bool) (Result, error) {
	courses, students, err := build(f)
	if err != nil {
		return Result{}, fmt.Errorf("seed.Load: %w", err)
	}

	if reset {
		if err := store.Reset(); err != nil {
			return Result{}, fmt.Errorf("seed.Load: %w", err)
		}
	}

	ids, err := store.BulkCreateCourses(courses)
	if err != nil {
		return Result{}, fmt.Errorf("seed.Load: courses: %w", err)
	}

	byTitle := make(map[string]int64, len(ids))
	for i, id := range ids {
		byTitle[courses[i].Title] = id
	}
	for i := range students {
		students[i].CourseID = byTitle[f.Students[i].Course]
	}

	if _, err := store.BulkCreateStudents(students); err != nil {
		return Result{}, fmt.Errorf("seed.Load: students: %w", err)
	}

	slog.Info("seeded store",
		slog.Int("courses", len(courses)),
		slog.Int("students", len(students)))

	return Result{Courses: len(courses), Students: len(students)}, nil
}

// LoadDefault loads the built-in roster.
func LoadDefault(store storage.Storage, reset bool) (Result, error) {
	f, err := Default()
	if err != nil {
		return Result{}, err
	}
	return Load(store, f, reset)
}

// build turns f into records and checks them against the validate:"..."
// rules. Students come back without a CourseID; Load fills it in once
// the courses exist.
func build(f Fixtures) ([]types.Course, []types.Student, error) {
	known := make(map[string]bool, len(f.Courses))
	courses := make([]types.Course, 0, len(f.Courses))
	for _, c := range f.Courses {
		course := types.Course{Title: c.Title, Description: c.Description}
		if err := validate.Struct(course); err != nil {
			return nil, nil, fmt.Errorf("course %q: %w", c.Title, err)
		}
		known[c.Title] = true
		courses = append(courses, course)
	}

	students := make([]types.Student, 0, len(f.Students))
	for _, s := range f.Students {
		if !known[s.Course] {
			return nil, nil, fmt.Errorf("student %q: course %q: %w",
				s.Name, s.Course, storage.ErrCourseMissing)
		}
		student := types.Student{Name: s.Name, Age: s.Age, Email: s.Email}
		if err := validate.StructExcept(student, "CourseID"); err != nil {
			return nil, nil, fmt.Errorf("student %q: %w", s.Name, err)
		}
		students = append(students, student)
	}
	return courses, students, nil
}
