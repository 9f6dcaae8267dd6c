package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/queryset-api/internal/seed"
	"github.com/aanand-mishra/queryset-api/internal/storage/memory"
	"github.com/aanand-mishra/queryset-api/internal/utils/response"
)

func setup(t *testing.T) (http.Handler, *memory.Memory) {
	t.Helper()
	store := memory.New()
	_, err := seed.LoadDefault(store, false)
	require.NoError(t, err)
	return New(store), store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStudentCRUD(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodPost, "/api/students",
		`{"name":"Rakesh","email":"rakesh@test.com","age":35,"course_id":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]int64](t, w)
	assert.Equal(t, int64(9), created["id"])

	w = do(t, h, http.MethodGet, "/api/students/9", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "Rakesh", got["name"])
	assert.Equal(t, "Python", got["course"].(map[string]any)["title"])

	w = do(t, h, http.MethodPut, "/api/students/9",
		`{"name":"Rakesh K","email":"","age":36,"course_id":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[map[string]any](t, w)
	assert.Equal(t, "Rakesh K", got["name"])
	assert.Equal(t, "Django", got["course"].(map[string]any)["title"])

	w = do(t, h, http.MethodDelete, "/api/students/9", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/students/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentCreateErrors(t *testing.T) {
	h, _ := setup(t)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"empty body", "", http.StatusBadRequest, "request body is empty"},
		{"bad json", "{", http.StatusBadRequest, ""},
		{"missing name", `{"age":20,"course_id":1}`, http.StatusBadRequest, "field Name is required"},
		{"too old", `{"name":"Old","age":121,"course_id":1}`, http.StatusBadRequest, "field Age must be at most 120"},
		{"bad email", `{"name":"X","age":20,"email":"nope","course_id":1}`, http.StatusBadRequest, "field Email must be a valid email address"},
		{"unknown course", `{"name":"X","age":20,"course_id":42}`, http.StatusBadRequest, "referenced course does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/students", tt.body)
			assert.Equal(t, tt.status, w.Code)
			res := decode[response.Response](t, w)
			assert.Equal(t, response.StatusError, res.Status)
			assert.Contains(t, res.Error, tt.message)
		})
	}
}

func TestInvalidID(t *testing.T) {
	h, _ := setup(t)
	w := do(t, h, http.MethodGet, "/api/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodDelete, "/api/courses/xyz", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentList(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/api/students?min_age=21&order=-age", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Students []struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		} `json:"students"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 5, list.Count)
	assert.Equal(t, "Fatima", list.Students[0].Name)

	// Garbage parameters degrade to "not applied".
	w = do(t, h, http.MethodGet, "/api/students?min_age=twenty&order=password", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 8, list.Count)
	assert.Equal(t, "John", list.Students[0].Name)
}

func TestStudentExport(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/api/students/export?course=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "students.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Aisha", rows[1][1])
}

func TestCourseLifecycle(t *testing.T) {
	h, store := setup(t)

	w := do(t, h, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, w.Code)
	courses := decode[[]map[string]any](t, w)
	require.Len(t, courses, 3)
	assert.Equal(t, "Django", courses[0]["title"])
	assert.Equal(t, float64(3), courses[0]["student_count"])

	w = do(t, h, http.MethodGet, "/api/courses/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, w)
	stats := detail["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(30), stats["max_age"])

	w = do(t, h, http.MethodPut, "/api/courses/1", `{"title":"Python 3","description":"Updated."}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Python 3", decode[map[string]any](t, w)["title"])

	w = do(t, h, http.MethodPost, "/api/courses", `{"description":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/courses/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode[map[string]any](t, w)["students_deleted"])

	students, err := store.GetStudents()
	require.NoError(t, err)
	assert.Len(t, students, 5)

	w = do(t, h, http.MethodGet, "/api/courses/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodDelete, "/api/courses/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardAndDemo(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[map[string]any](t, w)
	assert.Equal(t, float64(8), d["total_students"])
	assert.Equal(t, 22.125, d["avg_age"])

	w = do(t, h, http.MethodGet, "/api/demo", "")
	require.Equal(t, http.StatusOK, w.Code)
	demo := decode[map[string]any](t, w)
	assert.Equal(t, true, demo["has_young"])
	assert.Len(t, demo["age_gt_20"], 5)
	assert.Equal(t, 22.125, demo["aggregates"].(map[string]any)["avg_age"])
}
