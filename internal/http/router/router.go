// Package router wires every handler to its route.
//
// Route table:
//
//	POST   /api/courses           → create a course
//	GET    /api/courses           → courses by title, with student_count
//	GET    /api/courses/{id}      → course detail with age stats
//	PUT    /api/courses/{id}      → update a course
//	DELETE /api/courses/{id}      → delete a course and its students
//	POST   /api/students          → create a student
//	GET    /api/students          → filtered, ordered student list
//	GET    /api/students/export   → same list as an XLSX workbook
//	GET    /api/students/{id}     → get one student
//	PUT    /api/students/{id}     → update a student
//	DELETE /api/students/{id}     → delete a student
//	GET    /api/dashboard         → landing page summary
//	GET    /api/demo              → query building block demo
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/queryset-api/internal/http/handlers/course"
	"github.com/aanand-mishra/queryset-api/internal/http/handlers/dashboard"
	"github.com/aanand-mishra/queryset-api/internal/http/handlers/student"
	"github.com/aanand-mishra/queryset-api/internal/report"
	"github.com/aanand-mishra/queryset-api/internal/storage"
)

// New returns the root handler. Routing is done by the standard
// ServeMux; chi's middleware adds a request id, the client's real IP,
// and turns handler panics into 500s instead of dropped connections.
func New(store storage.Storage) http.Handler {
	svc := report.New(store)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/courses", course.New(store))
	mux.HandleFunc("GET /api/courses", course.GetList(svc))
	mux.HandleFunc("GET /api/courses/{id}", course.GetByID(svc))
	mux.HandleFunc("PUT /api/courses/{id}", course.Update(store))
	mux.HandleFunc("DELETE /api/courses/{id}", course.Delete(store))

	mux.HandleFunc("POST /api/students", student.New(store))
	mux.HandleFunc("GET /api/students", student.GetList(svc))
	mux.HandleFunc("GET /api/students/export", student.Export(svc))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(store))
	mux.HandleFunc("PUT /api/students/{id}", student.Update(store))
	mux.HandleFunc("DELETE /api/students/{id}", student.Delete(store))

	mux.HandleFunc("GET /api/dashboard", dashboard.Dashboard(svc))
	mux.HandleFunc("GET /api/demo", dashboard.Demo(svc))

	return chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	).Handler(mux)
}
