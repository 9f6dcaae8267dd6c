package sqlite

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/storage/storagetest"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage { return newTestDB(t) })
}

func TestInMemoryPath(t *testing.T) {
	newStore := func(t *testing.T) storage.Storage {
		s, err := New(&config.Config{StoragePath: ":memory:"})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	}
	storagetest.Run(t, newStore)

	// Tables created at open must still be there once the pool has been
	// used from several goroutines.
	s := newStore(t).(*SQLite)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetCourses()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Db.Stats().MaxOpenConnections)
}

func TestReopenKeepsData(t *testing.T) {
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "reopen.db")}

	s, err := New(cfg)
	require.NoError(t, err)
	id, err := s.CreateCourse(types.Course{Title: "Python"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(cfg)
	require.NoError(t, err)
	defer s.Close()

	c, err := s.GetCourseByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Python", c.Title)
}

func TestCreateCoursePrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare("INSERT INTO courses").WillReturnError(errors.New("disk I/O error"))

	s := &SQLite{Db: db}
	_, err = s.CreateCourse(types.Course{Title: "Python"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CreateCourse: prepare")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students WHERE course_id = ?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM courses WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	s := &SQLite{Db: db}
	_, err = s.DeleteCourseByID(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingCourseRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM courses").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	s := &SQLite{Db: db}
	_, err = s.DeleteCourseByID(1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
