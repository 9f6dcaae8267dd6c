// Package course contains the HTTP handlers for the Course resource.
// Handlers follow the same factory pattern as package student.
package course

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/queryset-api/internal/report"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
	"github.com/aanand-mishra/queryset-api/internal/utils/request"
	"github.com/aanand-mishra/queryset-api/internal/utils/response"
)

// New handles POST /api/courses
//
//	{ "title": "Go", "description": "Concurrency and interfaces." }  →  201 { "id": 4 }
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a course")

		var course types.Course
		if !request.DecodeValid(w, r, &course) {
			return
		}

		lastID, err := store.CreateCourse(course)
		if err != nil {
			slog.Error("error creating course", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		slog.Info("course created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetList handles GET /api/courses: every course ordered by title,
// each annotated with student_count.
func GetList(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing courses")

		courses, err := svc.ListCourses()
		if err != nil {
			slog.Error("error listing courses", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// GetByID handles GET /api/courses/{id}: the course, its students by
// name, and age statistics.
func GetByID(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting course detail", slog.Int64("id", id))

		detail, err := svc.CourseDetail(id)
		if err != nil {
			slog.Error("error getting course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, detail)
	}
}

// Update handles PUT /api/courses/{id}. Title and description are
// replaced; created_at is kept.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a course", slog.Int64("id", id))

		var course types.Course
		if !request.DecodeValid(w, r, &course) {
			return
		}

		updated, err := store.UpdateCourseByID(id, course)
		if err != nil {
			slog.Error("error updating course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/courses/{id}. The course's students are
// deleted with it.
//
//	200 { "status": "deleted", "students_deleted": 3 }
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a course", slog.Int64("id", id))

		removed, err := store.DeleteCourseByID(id)
		if err != nil {
			slog.Error("error deleting course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		slog.Info("course deleted",
			slog.Int64("id", id),
			slog.Int("students_deleted", removed))
		response.WriteJSON(w, http.StatusOK, map[string]any{
			"status":           "deleted",
			"students_deleted": removed,
		})
	}
}
