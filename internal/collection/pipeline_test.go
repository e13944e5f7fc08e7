package collection

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnadmin/internal/models"
)

type row struct {
	ID      int
	Title   string
	Status  models.Status
	Price   float64
	Code    string
	Created time.Time
	Owner   *string
}

var rowSchema = Schema[row]{
	Resource: "rows",
	Singular: "Row",
	ID:       func(r row) string { return strconv.Itoa(r.ID) },
	Fields: map[string]func(row) any{
		"id":      func(r row) any { return r.ID },
		"title":   func(r row) any { return r.Title },
		"status":  func(r row) any { return r.Status },
		"price":   func(r row) any { return r.Price },
		"code":    func(r row) any { return r.Code },
		"created": func(r row) any { return r.Created },
		"owner":   func(r row) any { return r.Owner },
	},
	TextFields: []string{"title", "code"},
	Status: &StatusField[row]{
		Get: func(r row) models.Status { return r.Status },
		Set: func(r row, s models.Status) row { r.Status = s; return r },
	},
}

func ids(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func exampleRows() []row {
	return []row{
		{ID: 1, Title: "Alpha", Status: "active"},
		{ID: 2, Title: "Beta", Status: "inactive"},
		{ID: 3, Title: "alpha2", Status: "active"},
	}
}

func TestFilterExampleScenario(t *testing.T) {
	got := Filter(exampleRows(), rowSchema, FilterState{
		Query: "alpha",
		Exact: map[string]string{"status": "active"},
	})
	assert.Equal(t, []int{1, 3}, ids(got))
}

func TestFilterCases(t *testing.T) {
	rows := append(exampleRows(), row{ID: 4, Title: "Gamma", Code: "ALPHA-7", Status: "active"})

	tests := []struct {
		name  string
		state FilterState
		want  []int
	}{
		{"empty filter keeps all", FilterState{}, []int{1, 2, 3, 4}},
		{"query is case-insensitive", FilterState{Query: "ALPHA"}, []int{1, 3, 4}},
		{"query matches any text field", FilterState{Query: "-7"}, []int{4}},
		{"empty exact value is inactive", FilterState{Exact: map[string]string{"status": ""}}, []int{1, 2, 3, 4}},
		{"exact is case-sensitive", FilterState{Exact: map[string]string{"status": "Active"}}, []int{}},
		{"unknown exact field matches nothing", FilterState{Exact: map[string]string{"nope": "x"}}, []int{}},
		{"no match", FilterState{Query: "zeta"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(rows, rowSchema, tt.state)))
		})
	}
}

func TestFilterAbsentFieldsDoNotPanic(t *testing.T) {
	schema := rowSchema
	schema.TextFields = []string{"owner", "missing"}

	owner := "Priya"
	rows := []row{{ID: 1}, {ID: 2, Owner: &owner}}

	assert.Equal(t, []int{2}, ids(Filter(rows, schema, FilterState{Query: "pri"})))
	assert.Equal(t, []int{1, 2}, ids(Filter(rows, schema, FilterState{Exact: map[string]string{"owner": ""}})))
	assert.Empty(t, Filter(rows, schema, FilterState{Exact: map[string]string{"missing": "x"}}))
}

// randomRows builds n rows with deliberately colliding titles and statuses.
func randomRows(rng *rand.Rand, n int) []row {
	titles := []string{"Alpha", "alpha", "Beta", "Go 101", "go-201", "Zeta", ""}
	statuses := []models.Status{"active", "inactive", ""}
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{
			ID:     i + 1,
			Title:  titles[rng.Intn(len(titles))],
			Status: statuses[rng.Intn(len(statuses))],
			Price:  float64(rng.Intn(5) * 100),
			Code:   fmt.Sprintf("C%d", rng.Intn(20)),
		}
	}
	return rows
}

func TestFilterCorrectnessGenerated(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	queries := []string{"", "a", "ALPHA", "go", "c1", "zz"}
	statuses := []string{"", "active", "inactive"}

	for iter := 0; iter < 200; iter++ {
		rows := randomRows(rng, rng.Intn(30))
		state := FilterState{
			Query: queries[rng.Intn(len(queries))],
			Exact: map[string]string{"status": statuses[rng.Intn(len(statuses))]},
		}

		got := Filter(rows, rowSchema, state)

		var want []int
		for _, r := range rows {
			q := strings.ToLower(state.Query)
			textOK := q == "" || strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Code), q)
			statusOK := state.Exact["status"] == "" || string(r.Status) == state.Exact["status"]
			if textOK && statusOK {
				want = append(want, r.ID)
			}
		}
		if want == nil {
			want = []int{}
		}
		require.Equal(t, want, ids(got), "iteration %d, state %+v", iter, state)
	}
}

func TestSortTitleIsCaseSensitiveByteOrder(t *testing.T) {
	got := Sort(exampleRows(), rowSchema, SortState{Key: "title"})
	titles := []string{}
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Alpha", "Beta", "alpha2"}, titles)
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := exampleRows()
	_ = Sort(in, rowSchema, SortState{Key: "title", Direction: Descending})
	assert.Equal(t, []int{1, 2, 3}, ids(in))
}

func TestSortEmptyKeyKeepsOrder(t *testing.T) {
	in := []row{{ID: 3}, {ID: 1}, {ID: 2}}
	out := Sort(in, rowSchema, SortState{})
	assert.Equal(t, []int{3, 1, 2}, ids(out))

	out[0].ID = 99
	assert.Equal(t, 3, in[0].ID, "result is a copy")

	assert.NotNil(t, Sort[row](nil, rowSchema, SortState{Key: "title"}))
}

func TestSortNumericAwareness(t *testing.T) {
	rows := []row{
		{ID: 1, Price: 100, Code: "10"},
		{ID: 2, Price: 9, Code: "9"},
		{ID: 3, Price: 25, Code: "x"},
	}

	assert.Equal(t, []int{2, 3, 1}, ids(Sort(rows, rowSchema, SortState{Key: "price"})))
	assert.Equal(t, []int{1, 3, 2}, ids(Sort(rows, rowSchema, SortState{Key: "price", Direction: Descending})))

	// "9" and "10" are numeric strings; "x" falls back to string order.
	assert.Equal(t, -1, Compare("9", "10"))
	assert.Equal(t, 1, Compare("9", "10x"))
	assert.Equal(t, 0, Compare(int64(5), 5.0))
	assert.Equal(t, -1, Compare("NaN", "b"), "NaN is not numeric")
}

func TestSortTimes(t *testing.T) {
	now := time.Now()
	rows := []row{{ID: 1, Created: now}, {ID: 2, Created: now.Add(-time.Hour)}, {ID: 3, Created: now.Add(time.Hour)}}
	assert.Equal(t, []int{2, 1, 3}, ids(Sort(rows, rowSchema, SortState{Key: "created"})))
}

func TestSortStabilityGenerated(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 100; iter++ {
		rows := randomRows(rng, 1+rng.Intn(40))
		for _, dir := range []Direction{Ascending, Descending} {
			sorted := Sort(rows, rowSchema, SortState{Key: "status", Direction: dir})

			// Among equal keys, ids (input positions) must stay increasing.
			last := map[models.Status]int{}
			for _, r := range sorted {
				require.Greater(t, r.ID, last[r.Status], "iteration %d dir %s: unstable order", iter, dir)
				last[r.Status] = r.ID
			}
		}
	}
}

func TestSortDirectionSymmetryGenerated(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for iter := 0; iter < 100; iter++ {
		n := rng.Intn(25)
		rows := make([]row, n)
		for i, p := range rng.Perm(n) {
			rows[i] = row{ID: i + 1, Code: fmt.Sprintf("k%03d", p)}
		}

		asc := ids(Sort(rows, rowSchema, SortState{Key: "code"}))
		desc := ids(Sort(rows, rowSchema, SortState{Key: "code", Direction: Descending}))

		reversed := make([]int, len(asc))
		for i, id := range asc {
			reversed[len(asc)-1-i] = id
		}
		require.Equal(t, desc, reversed, "iteration %d", iter)
	}
}

func TestSortToggle(t *testing.T) {
	s := SortState{}
	s = s.Toggle("title")
	assert.Equal(t, SortState{Key: "title", Direction: Ascending}, s)
	s = s.Toggle("title")
	assert.Equal(t, SortState{Key: "title", Direction: Descending}, s)
	s = s.Toggle("price")
	assert.Equal(t, SortState{Key: "price", Direction: Ascending}, s)
}

func TestPaginateExample(t *testing.T) {
	p := Paginate(exampleRows(), 2, 2)
	assert.Equal(t, []int{3}, ids(p.Items))
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext())
	assert.True(t, p.HasPrev())

	first, last := p.Range()
	assert.Equal(t, 3, first)
	assert.Equal(t, 3, last)
}

func TestPaginateBounds(t *testing.T) {
	rows := exampleRows()

	tests := []struct {
		name       string
		page, size int
		want       []int
		totalPages int
	}{
		{"first page", 1, 2, []int{1, 2}, 2},
		{"past the end", 5, 2, []int{}, 2},
		{"page zero is first", 0, 2, []int{1, 2}, 2},
		{"negative page", -3, 2, []int{1, 2}, 2},
		{"size zero uses default", 1, 0, []int{1, 2, 3}, 1},
		{"size larger than list", 1, 50, []int{1, 2, 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(rows, tt.page, tt.size)
			assert.Equal(t, tt.want, ids(p.Items))
			assert.Equal(t, tt.totalPages, p.TotalPages)
		})
	}

	empty := Paginate[row](nil, 1, 10)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	first, last := empty.Range()
	assert.Zero(t, first)
	assert.Zero(t, last)
}

func TestPaginationCoverageGenerated(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for iter := 0; iter < 100; iter++ {
		rows := randomRows(rng, rng.Intn(60))
		size := 1 + rng.Intn(12)

		p1 := Paginate(rows, 1, size)
		var all []int
		for page := 1; page <= p1.TotalPages; page++ {
			p := Paginate(rows, page, size)
			require.LessOrEqual(t, len(p.Items), size)
			all = append(all, ids(p.Items)...)
		}
		if all == nil {
			all = []int{}
		}
		require.Equal(t, ids(rows), all, "iteration %d size %d", iter, size)
		require.Equal(t, (len(rows)+size-1)/size, p1.TotalPages)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 1, ClampPage(4, 0))
}

func TestFieldString(t *testing.T) {
	var nilStr *string
	s := "x"
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{nilStr, ""},
		{&s, "x"},
		{models.ID("42"), "42"},
		{models.StatusActive, "active"},
		{models.Price(499.5), "499.5"},
		{12, "12"},
		{true, "true"},
		{[]string{"vip", "beta"}, "vip, beta"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FieldString(tt.in), "%#v", tt.in)
	}
}

func TestReconcileHelpers(t *testing.T) {
	rows := exampleRows()
	idOf := rowSchema.ID

	out, removed := RemoveByID(rows, idOf, "2")
	assert.True(t, removed)
	assert.Equal(t, []int{1, 3}, ids(out))
	assert.Equal(t, []int{1, 2, 3}, ids(rows), "input untouched")

	_, removed = RemoveByID(rows, idOf, "9")
	assert.False(t, removed)

	out, replaced := ReplaceByID(rows, idOf, row{ID: 3, Title: "Gamma"})
	assert.True(t, replaced)
	assert.Equal(t, "Gamma", out[2].Title)
	assert.Equal(t, "alpha2", rows[2].Title)

	found, ok := FindByID(rows, idOf, "1")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", found.Title)
}
