// Package memory provides an in-process implementation of storage.Storage.
//
// All writes take the store's write lock, so a course deletion and a
// concurrent student creation against that course can never interleave:
// either the student lands first and is cascaded away, or the deletion
// lands first and the creation fails with storage.ErrCourseMissing.
// Reads share a read lock and return copies, so callers may keep and
// mutate what they get back.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// Memory is the in-process record store.
type Memory struct {
	mu sync.RWMutex

	courses     map[int64]types.Course
	courseOrder []int64
	students    map[int64]types.Student
	// studentOrder keeps insertion order so GetStudents is deterministic.
	studentOrder []int64

	lastCourseID  int64
	lastStudentID int64

	now func() time.Time
}

// New returns an empty store.
func New() *Memory {
	return &Memory{
		courses:  make(map[int64]types.Course),
		students: make(map[int64]types.Student),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) CreateCourse(course types.Course) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertCourse(course), nil
}

func (m *Memory) BulkCreateCourses(courses []types.Course) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, m.insertCourse(c))
	}
	return ids, nil
}

func (m *Memory) insertCourse(course types.Course) int64 {
	m.lastCourseID++
	course.ID = m.lastCourseID
	course.CreatedAt = m.now()
	m.courses[course.ID] = course
	m.courseOrder = append(m.courseOrder, course.ID)
	return course.ID
}

func (m *Memory) GetCourseByID(id int64) (types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[id]
	if !ok {
		return types.Course{}, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

func (m *Memory) GetCourses() ([]types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	courses := make([]types.Course, 0, len(m.courseOrder))
	for _, id := range m.courseOrder {
		courses = append(courses, m.courses[id])
	}
	return courses, nil
}

func (m *Memory) UpdateCourseByID(id int64, course types.Course) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.courses[id]
	if !ok {
		return types.Course{}, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
	}
	existing.Title = course.Title
	existing.Description = course.Description
	m.courses[id] = existing
	return existing, nil
}

// DeleteCourseByID deletes dependents first, then the course, under a
// single write lock so no reader observes a partial cascade.
func (m *Memory) DeleteCourseByID(id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[id]; !ok {
		return 0, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
	}

	removed := 0
	kept := m.studentOrder[:0]
	for _, sid := range m.studentOrder {
		if m.students[sid].CourseID == id {
			delete(m.students, sid)
			removed++
			continue
		}
		kept = append(kept, sid)
	}
	m.studentOrder = kept

	delete(m.courses, id)
	m.courseOrder = removeID(m.courseOrder, id)
	return removed, nil
}

func (m *Memory) CreateStudent(student types.Student) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[student.CourseID]; !ok {
		return 0, fmt.Errorf("course %d: %w", student.CourseID, storage.ErrCourseMissing)
	}
	return m.insertStudent(student), nil
}

func (m *Memory) BulkCreateStudents(students []types.Student) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check everything before inserting anything: all or nothing.
	for _, s := range students {
		if _, ok := m.courses[s.CourseID]; !ok {
			return nil, fmt.Errorf("course %d: %w", s.CourseID, storage.ErrCourseMissing)
		}
	}

	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, m.insertStudent(s))
	}
	return ids, nil
}

func (m *Memory) insertStudent(student types.Student) int64 {
	m.lastStudentID++
	student.ID = m.lastStudentID
	student.Course = nil
	student.EnrolledAt = m.now()
	m.students[student.ID] = student
	m.studentOrder = append(m.studentOrder, student.ID)
	return student.ID
}

func (m *Memory) GetStudentByID(id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return types.Student{}, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	return m.withCourse(s), nil
}

func (m *Memory) GetStudents() ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.studentOrder))
	for _, id := range m.studentOrder {
		students = append(students, m.withCourse(m.students[id]))
	}
	return students, nil
}

// withCourse attaches a private copy of the related course.
func (m *Memory) withCourse(s types.Student) types.Student {
	if c, ok := m.courses[s.CourseID]; ok {
		s.Course = &c
	}
	return s
}

func (m *Memory) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.students[id]
	if !ok {
		return types.Student{}, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	if _, ok := m.courses[student.CourseID]; !ok {
		return types.Student{}, fmt.Errorf("course %d: %w", student.CourseID, storage.ErrCourseMissing)
	}

	existing.Name = student.Name
	existing.Age = student.Age
	existing.Email = student.Email
	existing.CourseID = student.CourseID
	m.students[id] = existing
	return m.withCourse(existing), nil
}

func (m *Memory) DeleteStudentByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[id]; !ok {
		return fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	delete(m.students, id)
	m.studentOrder = removeID(m.studentOrder, id)
	return nil
}

// Reset clears all records. Id counters keep running so ids are never
// handed out twice.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.courses = make(map[int64]types.Course)
	m.students = make(map[int64]types.Student)
	m.courseOrder = nil
	m.studentOrder = nil
	return nil
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var _ storage.Storage = (*Memory)(nil)
