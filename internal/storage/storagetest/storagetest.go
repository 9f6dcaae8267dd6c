// Package storagetest is a conformance suite that every storage.Storage
// implementation runs from its own tests.
package storagetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// Run exercises store contracts against fresh stores from newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("CourseCRUD", func(t *testing.T) { testCourseCRUD(t, newStore(t)) })
	t.Run("StudentCRUD", func(t *testing.T) { testStudentCRUD(t, newStore(t)) })
	t.Run("StudentNeedsCourse", func(t *testing.T) { testStudentNeedsCourse(t, newStore(t)) })
	t.Run("BulkCreate", func(t *testing.T) { testBulkCreate(t, newStore(t)) })
	t.Run("CascadeDelete", func(t *testing.T) { testCascadeDelete(t, newStore(t)) })
	t.Run("IDsNotReused", func(t *testing.T) { testIDsNotReused(t, newStore(t)) })
	t.Run("ConcurrentDeleteAndCreate", func(t *testing.T) { testConcurrentDeleteAndCreate(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func testCourseCRUD(t *testing.T, s storage.Storage) {
	id, err := s.CreateCourse(types.Course{Title: "Python", Description: "Basics"})
	require.NoError(t, err)

	c, err := s.GetCourseByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Python", c.Title)
	assert.Equal(t, "Basics", c.Description)
	assert.False(t, c.CreatedAt.IsZero())

	updated, err := s.UpdateCourseByID(id, types.Course{Title: "Python 3"})
	require.NoError(t, err)
	assert.Equal(t, "Python 3", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.True(t, c.CreatedAt.Equal(updated.CreatedAt), "created_at must not change")

	_, err = s.GetCourseByID(id + 100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateCourseByID(id+100, types.Course{Title: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	courses, err := s.GetCourses()
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func testStudentCRUD(t *testing.T, s storage.Storage) {
	python, err := s.CreateCourse(types.Course{Title: "Python"})
	require.NoError(t, err)
	django, err := s.CreateCourse(types.Course{Title: "Django"})
	require.NoError(t, err)

	id, err := s.CreateStudent(types.Student{Name: "John", Age: 22, Email: "john@example.com", CourseID: python})
	require.NoError(t, err)

	st, err := s.GetStudentByID(id)
	require.NoError(t, err)
	assert.Equal(t, "John", st.Name)
	assert.Equal(t, 22, st.Age)
	require.NotNil(t, st.Course)
	assert.Equal(t, "Python", st.Course.Title)
	assert.False(t, st.EnrolledAt.IsZero())

	updated, err := s.UpdateStudentByID(id, types.Student{Name: "Johnny", Age: 23, CourseID: django})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "", updated.Email)
	assert.Equal(t, "Django", updated.CourseTitle())
	assert.True(t, st.EnrolledAt.Equal(updated.EnrolledAt), "enrolled_at must not change")

	_, err = s.UpdateStudentByID(id, types.Student{Name: "x", Age: 1, CourseID: 999})
	assert.ErrorIs(t, err, storage.ErrCourseMissing)
	_, err = s.UpdateStudentByID(999, types.Student{Name: "x", Age: 1, CourseID: python})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteStudentByID(id))
	_, err = s.GetStudentByID(id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteStudentByID(id), storage.ErrNotFound)

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func testStudentNeedsCourse(t *testing.T, s storage.Storage) {
	_, err := s.CreateStudent(types.Student{Name: "Orphan", Age: 20, CourseID: 1})
	assert.ErrorIs(t, err, storage.ErrCourseMissing)
}

func testBulkCreate(t *testing.T, s storage.Storage) {
	ids, err := s.BulkCreateCourses([]types.Course{{Title: "A"}, {Title: "B"}})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	sids, err := s.BulkCreateStudents([]types.Student{
		{Name: "x", Age: 20, CourseID: ids[0]},
		{Name: "y", Age: 21, CourseID: ids[1]},
		{Name: "z", Age: 22, CourseID: ids[0]},
	})
	require.NoError(t, err)
	assert.Len(t, sids, 3)

	students, err := s.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{students[0].Name, students[1].Name, students[2].Name})
	assert.Equal(t, "B", students[1].CourseTitle())

	// One bad reference rejects the whole batch.
	_, err = s.BulkCreateStudents([]types.Student{
		{Name: "ok", Age: 20, CourseID: ids[0]},
		{Name: "bad", Age: 20, CourseID: 999},
	})
	assert.ErrorIs(t, err, storage.ErrCourseMissing)

	students, err = s.GetStudents()
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func testCascadeDelete(t *testing.T, s storage.Storage) {
	ids, err := s.BulkCreateCourses([]types.Course{{Title: "Python"}, {Title: "Django"}})
	require.NoError(t, err)
	_, err = s.BulkCreateStudents([]types.Student{
		{Name: "John", Age: 22, CourseID: ids[0]},
		{Name: "Ali", Age: 25, CourseID: ids[1]},
		{Name: "Sara", Age: 19, CourseID: ids[0]},
	})
	require.NoError(t, err)

	removed, err := s.DeleteCourseByID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	students, err := s.GetStudents()
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ali", students[0].Name)

	_, err = s.GetCourseByID(ids[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.DeleteCourseByID(ids[0])
	assert.ErrorIs(t, err, storage.ErrNotFound)

	removed, err = s.DeleteCourseByID(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func testIDsNotReused(t *testing.T, s storage.Storage) {
	first, err := s.CreateCourse(types.Course{Title: "A"})
	require.NoError(t, err)
	_, err = s.DeleteCourseByID(first)
	require.NoError(t, err)
	second, err := s.CreateCourse(types.Course{Title: "B"})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	student, err := s.CreateStudent(types.Student{Name: "Ann", Age: 30, CourseID: second})
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	third, err := s.CreateCourse(types.Course{Title: "C"})
	require.NoError(t, err)
	assert.Greater(t, third, second, "course id reused after Reset")

	next, err := s.CreateStudent(types.Student{Name: "Ben", Age: 31, CourseID: third})
	require.NoError(t, err)
	assert.Greater(t, next, student, "student id reused after Reset")
}

// A student insert racing a course delete must end with either the
// student gone (cascaded) or the insert rejected, never a dangling row.
func testConcurrentDeleteAndCreate(t *testing.T, s storage.Storage) {
	courseID, err := s.CreateCourse(types.Course{Title: "Doomed"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateStudent(types.Student{Name: "racer", Age: 20, CourseID: courseID})
			errs <- err
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.DeleteCourseByID(courseID)
		assert.NoError(t, err)
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, storage.ErrCourseMissing)
		}
	}

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.Empty(t, students)
}

func testReset(t *testing.T, s storage.Storage) {
	id, err := s.CreateCourse(types.Course{Title: "A"})
	require.NoError(t, err)
	_, err = s.CreateStudent(types.Student{Name: "x", Age: 20, CourseID: id})
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	courses, err := s.GetCourses()
	require.NoError(t, err)
	assert.Empty(t, courses)
	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.Empty(t, students)
}
