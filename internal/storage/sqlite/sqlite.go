// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Two tables are created on startup:
//
//	courses  (id, title, description, created_at)
//	students (id, name, age, email, course_id → courses.id, enrolled_at)
//
// The cascade from a course to its students is done explicitly inside a
// transaction (delete students, then the course) rather than relying on
// an ON DELETE trigger, so the count of removed students can be reported
// and no caller ever sees a half-finished cascade.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// Db is a connection pool and is safe for concurrent reads; writeMu
// serializes writers so a course deletion and a student insert against
// the same course cannot interleave.
type SQLite struct {
	Db *sql.DB

	writeMu sync.Mutex
}

const schema = `
	CREATE TABLE IF NOT EXISTS courses (
		id          INTEGER  PRIMARY KEY AUTOINCREMENT,
		title       TEXT     NOT NULL,
		description TEXT     NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS students (
		id          INTEGER  PRIMARY KEY AUTOINCREMENT,
		name        TEXT     NOT NULL,
		age         INTEGER  NOT NULL,
		email       TEXT     NOT NULL DEFAULT '',
		course_id   INTEGER  NOT NULL REFERENCES courses(id),
		enrolled_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_students_course_id ON students(course_id);
`

// New opens the SQLite database at cfg.StoragePath, creates the tables if
// they do not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
	}

	// _foreign_keys=on makes SQLite itself refuse dangling course_ids.
	// WAL lets readers run alongside the single writer; the busy timeout
	// covers the moments a commit waits on a reader's lock.
	db, err := sql.Open("sqlite3",
		cfg.StoragePath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Each connection to ":memory:" gets its own empty database, so the
	// pool is pinned to one connection that lives as long as the store.
	if cfg.StoragePath == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create tables: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) CreateCourse(course types.Course) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stmt, err := s.Db.Prepare(
		"INSERT INTO courses (title, description, created_at) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(course.Title, course.Description, now())
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: last insert id: %w", err)
	}
	return lastID, nil
}

func (s *SQLite) BulkCreateCourses(courses []types.Course) ([]int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var ids []int64
	err := s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(
			"INSERT INTO courses (title, description, created_at) VALUES (?, ?, ?)",
		)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		ids = make([]int64, 0, len(courses))
		for _, c := range courses {
			result, err := stmt.Exec(c.Title, c.Description, now())
			if err != nil {
				return fmt.Errorf("exec: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("BulkCreateCourses: %w", err)
	}
	return ids, nil
}

func (s *SQLite) GetCourseByID(id int64) (types.Course, error) {
	var course types.Course
	err := s.Db.QueryRow(
		"SELECT id, title, description, created_at FROM courses WHERE id = ? LIMIT 1", id,
	).Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
		}
		return types.Course{}, fmt.Errorf("GetCourseByID: scan: %w", err)
	}
	return course, nil
}

func (s *SQLite) GetCourses() ([]types.Course, error) {
	rows, err := s.Db.Query(
		"SELECT id, title, description, created_at FROM courses ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetCourses: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var c types.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("GetCourses: scan row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCourses: rows iteration: %w", err)
	}
	return courses, nil
}

func (s *SQLite) UpdateCourseByID(id int64, course types.Course) (types.Course, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.Db.Exec(
		"UPDATE courses SET title = ?, description = ? WHERE id = ?",
		course.Title, course.Description, id,
	)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourseByID: exec: %w", err)
	}
	if err := requireAffected(result, "course", id); err != nil {
		return types.Course{}, err
	}

	return s.GetCourseByID(id)
}

// DeleteCourseByID cascades in two steps inside one transaction:
// students first, then the course itself.
func (s *SQLite) DeleteCourseByID(id int64) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var removed int64
	err := s.inTx(func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM students WHERE course_id = ?", id)
		if err != nil {
			return fmt.Errorf("delete students: %w", err)
		}
		if removed, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("students affected: %w", err)
		}

		result, err = tx.Exec("DELETE FROM courses WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return requireAffected(result, "course", id)
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteCourseByID: %w", err)
	}
	return int(removed), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

const insertStudent = "INSERT INTO students (name, age, email, course_id, enrolled_at) VALUES (?, ?, ?, ?, ?)"

func (s *SQLite) CreateStudent(student types.Student) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var id int64
	err := s.inTx(func(tx *sql.Tx) error {
		if err := courseExists(tx, student.CourseID); err != nil {
			return err
		}
		result, err := tx.Exec(insertStudent,
			student.Name, student.Age, student.Email, student.CourseID, now())
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}
	return id, nil
}

func (s *SQLite) BulkCreateStudents(students []types.Student) ([]int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var ids []int64
	err := s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertStudent)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		ids = make([]int64, 0, len(students))
		for _, st := range students {
			if err := courseExists(tx, st.CourseID); err != nil {
				return err
			}
			result, err := stmt.Exec(st.Name, st.Age, st.Email, st.CourseID, now())
			if err != nil {
				return fmt.Errorf("exec: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("BulkCreateStudents: %w", err)
	}
	return ids, nil
}

// selectStudents joins each student to its course so callers get
// course.title without a second query.
const selectStudents = `
	SELECT s.id, s.name, s.age, s.email, s.course_id, s.enrolled_at,
	       c.id, c.title, c.description, c.created_at
	FROM students s
	JOIN courses c ON c.id = s.course_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		st types.Student
		c  types.Course
	)
	err := row.Scan(
		&st.ID, &st.Name, &st.Age, &st.Email, &st.CourseID, &st.EnrolledAt,
		&c.ID, &c.Title, &c.Description, &c.CreatedAt,
	)
	if err != nil {
		return types.Student{}, err
	}
	st.Course = &c
	return st, nil
}

func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	st, err := scanStudent(s.Db.QueryRow(selectStudents+" WHERE s.id = ? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return st, nil
}

func (s *SQLite) GetStudents() ([]types.Student, error) {
	rows, err := s.Db.Query(selectStudents + " ORDER BY s.id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}
	return students, nil
}

func (s *SQLite) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.inTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow("SELECT 1 FROM students WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}
		if err := courseExists(tx, student.CourseID); err != nil {
			return err
		}
		_, err = tx.Exec(
			"UPDATE students SET name = ?, age = ?, email = ?, course_id = ? WHERE id = ?",
			student.Name, student.Age, student.Email, student.CourseID, id,
		)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(id)
}

func (s *SQLite) DeleteStudentByID(id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	return requireAffected(result, "student", id)
}

func (s *SQLite) Reset() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM students"); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM courses")
		return err
	})
	if err != nil {
		return fmt.Errorf("Reset: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (s *SQLite) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func courseExists(tx *sql.Tx, courseID int64) error {
	var exists int
	err := tx.QueryRow("SELECT 1 FROM courses WHERE id = ?", courseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("course %d: %w", courseID, storage.ErrCourseMissing)
	}
	if err != nil {
		return fmt.Errorf("course lookup: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

var _ storage.Storage = (*SQLite)(nil)
