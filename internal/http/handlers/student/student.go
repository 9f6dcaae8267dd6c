// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function takes its dependencies (the store, the report
// service) once at startup and returns the http.HandlerFunc the router
// calls on every request:
//
//	router.HandleFunc("POST /api/students", student.New(store))
package student

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/queryset-api/internal/export"
	"github.com/aanand-mishra/queryset-api/internal/report"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/types"
	"github.com/aanand-mishra/queryset-api/internal/utils/request"
	"github.com/aanand-mishra/queryset-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "name": "Rakesh", "email": "rakesh@test.com", "age": 35, "course_id": 1 }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or a course_id that does not exist
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		if !request.DecodeValid(w, r, &student) {
			return
		}

		lastID, err := store.CreateStudent(student)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Success response (200 OK) — the student with its course embedded.
// 404 when no student has that id.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := store.GetStudentByID(id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Optional query parameters, all best-effort:
//
//	name     case-insensitive substring
//	min_age  inclusive, digits only (anything else is ignored)
//	max_age  inclusive, digits only
//	course   course id, digits only
//	order    name | -name | age | -age | course__title  (default: name)
//
// Success response (200 OK):
//
//	{ "students": [ ... ], "count": 2 }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := report.ParseStudentFilter(r.URL.Query())
		slog.Info("listing students",
			slog.String("name", filter.Name),
			slog.String("order", filter.Order))

		list, err := svc.ListStudents(filter)
		if err != nil {
			slog.Error("error listing students", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// Export handles GET /api/students/export. It takes the same query
// parameters as GetList and answers with an XLSX workbook.
func Export(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListStudents(report.ParseStudentFilter(r.URL.Query()))
		if err != nil {
			slog.Error("error exporting students", slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
		if err := export.WriteRoster(w, list.Students); err != nil {
			// Headers may already be out; all we can do is log.
			slog.Error("error writing roster", slog.String("error", err.Error()))
			return
		}
		slog.Info("students exported", slog.Int("count", list.Count))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student; enrolled_at is kept.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, validation failure,
//	                   or unknown course_id
//	404 Not Found    — no such student
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var student types.Student
		if !request.DecodeValid(w, r, &student) {
			return
		}

		updated, err := store.UpdateStudentByID(id, student)
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := store.DeleteStudentByID(id); err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Fail(w, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
