package report

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/queryset-api/internal/query"
	"github.com/aanand-mishra/queryset-api/internal/seed"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/storage/memory"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

func seeded(t *testing.T) (*Service, *memory.Memory) {
	t.Helper()
	store := memory.New()
	_, err := seed.LoadDefault(store, false)
	require.NoError(t, err)
	return New(store), store
}

func studentNames(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.Name)
	}
	return out
}

func TestListStudents(t *testing.T) {
	svc, _ := seeded(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default orders by name", "", []string{"Aisha", "Ali", "Carlos", "Fatima", "James", "John", "Maria", "Sara"}},
		{"name icontains", "name=AR", []string{"Carlos", "Maria", "Sara"}},
		{"age bounds", "min_age=20&max_age=22&order=age", []string{"Aisha", "Maria", "John"}},
		{"course id", "course=3&order=-age", []string{"Carlos", "James"}},
		{"course title order", "order=course__title", []string{"Ali", "Maria", "Aisha", "James", "Carlos", "John", "Sara", "Fatima"}},
		{"non numeric bounds ignored", "min_age=abc&max_age=-5&course=1.5", []string{"Aisha", "Ali", "Carlos", "Fatima", "James", "John", "Maria", "Sara"}},
		{"unknown order keeps store order", "order=email", []string{"John", "Sara", "Ali", "Maria", "James", "Fatima", "Carlos", "Aisha"}},
		{"explicit empty order keeps store order", "order=", []string{"John", "Sara", "Ali", "Maria", "James", "Fatima", "Carlos", "Aisha"}},
		{"padded values trimmed", "min_age=%2025%20&order=age", []string{"Ali", "Fatima"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := svc.ListStudents(ParseStudentFilter(v))
			require.NoError(t, err)
			assert.Equal(t, tt.want, studentNames(got.Students))
			assert.Equal(t, len(tt.want), got.Count)
		})
	}
}

func TestListCourses(t *testing.T) {
	svc, store := seeded(t)
	_, err := store.CreateCourse(types.Course{Title: "Assembly"})
	require.NoError(t, err)

	got, err := svc.ListCourses()
	require.NoError(t, err)

	type pair struct {
		Title string
		Count int
	}
	var pairs []pair
	for _, c := range got {
		pairs = append(pairs, pair{c.Title, c.StudentCount})
	}
	assert.Equal(t, []pair{
		{"Assembly", 0},
		{"Django", 3},
		{"JavaScript", 2},
		{"Python", 3},
	}, pairs)
}

func TestCourseDetail(t *testing.T) {
	svc, store := seeded(t)

	courses, err := store.GetCourses()
	require.NoError(t, err)
	python := courses[0]

	d, err := svc.CourseDetail(python.ID)
	require.NoError(t, err)
	assert.Equal(t, "Python", d.Course.Title)
	assert.Equal(t, []string{"Fatima", "John", "Sara"}, studentNames(d.Students))
	assert.InDelta(t, 23.6667, d.Stats.AvgAge.Value, 0.001)
	assert.Equal(t, query.Number{Value: 30, Valid: true}, d.Stats.MaxAge)
	assert.Equal(t, query.Number{Value: 19, Valid: true}, d.Stats.MinAge)
	assert.Equal(t, 3, d.Stats.Total)

	emptyID, err := store.CreateCourse(types.Course{Title: "Empty"})
	require.NoError(t, err)
	d, err = svc.CourseDetail(emptyID)
	require.NoError(t, err)
	assert.Empty(t, d.Students)
	assert.False(t, d.Stats.AvgAge.Valid)
	assert.Equal(t, 0, d.Stats.Total)

	_, err = svc.CourseDetail(999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDashboard(t *testing.T) {
	svc, _ := seeded(t)

	d, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 8, d.TotalStudents)
	assert.Equal(t, 3, d.TotalCourses)
	assert.Equal(t, "Aisha", d.AllStudents[0].Name)
	assert.Equal(t, query.Number{Value: 22.125, Valid: true}, d.AvgAge)
	require.NotNil(t, d.Oldest)
	assert.Equal(t, "Fatima", d.Oldest.Name)
	require.NotNil(t, d.Youngest)
	assert.Equal(t, "James", d.Youngest.Name)

	empty, err := New(memory.New()).Dashboard()
	require.NoError(t, err)
	assert.Nil(t, empty.Oldest)
	assert.False(t, empty.AvgAge.Valid)
}

func TestDemo(t *testing.T) {
	svc, _ := seeded(t)

	d, err := svc.Demo()
	require.NoError(t, err)

	assert.Equal(t, 8, d.Count)
	assert.Equal(t, query.Row{"id": int64(1), "name": "John", "age": int64(22), "course.title": "Python"}, d.AllStudents[0])
	assert.Equal(t, "John", d.First.Name)
	assert.Equal(t, "Aisha", d.Last.Name)
	assert.Len(t, d.AgeGt20, 5)
	assert.Len(t, d.NameContainsA, 7)
	assert.Len(t, d.AgeRange, 5)
	assert.Len(t, d.YoungOrOld, 4)
	assert.Len(t, d.NotPython, 5)

	assert.Equal(t, query.Number{Value: 22.125, Valid: true}, d.Aggregates["avg_age"])
	assert.Equal(t, query.Number{Value: 30, Valid: true}, d.Aggregates["max_age"])
	assert.Equal(t, query.Number{Value: 17, Valid: true}, d.Aggregates["min_age"])
	assert.Equal(t, query.Number{Value: 8, Valid: true}, d.Aggregates["total"])

	wantCourses := []query.Row{
		{"title": "Python", "student_count": int64(3)},
		{"title": "Django", "student_count": int64(3)},
		{"title": "JavaScript", "student_count": int64(2)},
	}
	if diff := cmp.Diff(wantCourses, d.CoursesAnnotated); diff != "" {
		t.Errorf("courses_annotated mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []any{"John", "Sara", "Ali", "Maria", "James", "Fatima", "Carlos", "Aisha"}, d.ValuesList)
	assert.Len(t, d.Values, 8)
	assert.True(t, d.HasStudents)
	assert.True(t, d.HasYoung)

	wantAsc := []query.Row{
		{"name": "James", "age": int64(17)},
		{"name": "Sara", "age": int64(19)},
		{"name": "Aisha", "age": int64(20)},
		{"name": "Maria", "age": int64(21)},
		{"name": "John", "age": int64(22)},
		{"name": "Carlos", "age": int64(23)},
		{"name": "Ali", "age": int64(25)},
		{"name": "Fatima", "age": int64(30)},
	}
	if diff := cmp.Diff(wantAsc, d.OrderedAsc); diff != "" {
		t.Errorf("ordered_asc mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Fatima", d.OrderedDesc[0]["name"])
}

func TestDemoEmptyStore(t *testing.T) {
	d, err := New(memory.New()).Demo()
	require.NoError(t, err)
	assert.Equal(t, 0, d.Count)
	assert.Nil(t, d.First)
	assert.False(t, d.HasStudents)
	assert.False(t, d.Aggregates["avg_age"].Valid)
	assert.Empty(t, d.AllStudents)
}
