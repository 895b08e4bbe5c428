package store_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolodexapp/rolodex-server/internal/store"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		perPage string
		want    store.PageParams
	}{
		{"defaults", "", "", store.PageParams{Page: 1, PerPage: 10}},
		{"explicit", "3", "25", store.PageParams{Page: 3, PerPage: 25}},
		{"whitespace", " 2 ", " 5", store.PageParams{Page: 2, PerPage: 5}},
		{"zero falls back", "0", "0", store.PageParams{Page: 1, PerPage: 10}},
		{"negative falls back", "-4", "-1", store.PageParams{Page: 1, PerPage: 10}},
		{"garbage falls back", "abc", "1.5", store.PageParams{Page: 1, PerPage: 10}},
		{"large per_page kept", "1", "5000", store.PageParams{Page: 1, PerPage: 5000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.ParsePageParams(tt.page, tt.perPage))
		})
	}
}

func TestPageParams_Cap(t *testing.T) {
	p := store.PageParams{Page: 1, PerPage: 500}

	assert.Equal(t, 100, p.Cap(100).PerPage)
	assert.Equal(t, 500, p.Cap(0).PerPage, "non-positive limit means unbounded")
	assert.Equal(t, 500, p.Cap(1000).PerPage)
}

func TestPageParams_Offset(t *testing.T) {
	assert.Equal(t, 0, store.PageParams{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 20, store.PageParams{Page: 3, PerPage: 10}.Offset())
	assert.Equal(t, math.MaxInt, store.PageParams{Page: math.MaxInt, PerPage: 10}.Offset())
}

func TestPageParams_TotalPages(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for perPage := 1; perPage <= 12; perPage++ {
			got := store.PageParams{Page: 1, PerPage: perPage}.TotalPages(total)
			want := int(math.Ceil(float64(total) / float64(perPage)))
			require.Equal(t, want, got, "total=%d per_page=%d", total, perPage)
		}
	}
}

func TestPaginate_CoversEveryItemOnce(t *testing.T) {
	all := make([]int, 37)
	for i := range all {
		all[i] = i
	}

	for perPage := 1; perPage <= 40; perPage++ {
		var seen []int
		first := store.Paginate(all, store.PageParams{Page: 1, PerPage: perPage})
		for page := 1; page <= first.TotalPages; page++ {
			p := store.Paginate(all, store.PageParams{Page: page, PerPage: perPage})
			assert.LessOrEqual(t, len(p.Items), perPage)
			seen = append(seen, p.Items...)
		}
		require.Equal(t, all, seen, "per_page=%d", perPage)
	}
}

func TestPaginate_PastEnd(t *testing.T) {
	all := []string{"a", "b", "c"}

	p := store.Paginate(all, store.PageParams{Page: 4, PerPage: 2})

	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Equal(t, 4, p.CurrentPage)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 3, p.TotalEntries)
}

func TestPaginate_HugePage(t *testing.T) {
	p := store.Paginate([]int{1, 2, 3}, store.PageParams{Page: math.MaxInt, PerPage: math.MaxInt})

	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalPages)
}

func TestNewPage_EmptyResult(t *testing.T) {
	p := store.NewPage[string](nil, store.DefaultPageParams(), 0)

	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 0, p.TotalEntries)
}

func TestMapPage(t *testing.T) {
	p := store.Paginate([]int{1, 2, 3, 4, 5}, store.PageParams{Page: 2, PerPage: 2})

	mapped := store.MapPage(p, func(n int) int { return n * 10 })

	assert.Equal(t, []int{30, 40}, mapped.Items)
	assert.Equal(t, p.TotalPages, mapped.TotalPages)
	assert.Equal(t, p.CurrentPage, mapped.CurrentPage)
	assert.Equal(t, p.TotalEntries, mapped.TotalEntries)
}
