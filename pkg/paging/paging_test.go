package paging

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_TotalPagesIsCeil(t *testing.T) {
	tests := []struct {
		name       string
		totalCount int
		pageSize   int
		want       int
	}{
		{"exact multiple", 30, 10, 3},
		{"remainder rounds up", 25, 10, 3},
		{"single partial page", 7, 10, 1},
		{"empty result set", 0, 10, 0},
		{"page size one", 5, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New([]int{}, tt.totalCount, 1, tt.pageSize)
			assert.Equal(t, tt.want, got.TotalPages)
		})
	}
}

// ceil(totalCount/pageSize) must hold across the whole input range, not just
// hand-picked cases.
func TestNew_TotalPagesProperty(t *testing.T) {
	for totalCount := 0; totalCount <= 50; totalCount++ {
		for pageSize := 1; pageSize <= 12; pageSize++ {
			got := New([]string{}, totalCount, 1, pageSize)
			want := 0
			if totalCount > 0 {
				want = (totalCount + pageSize - 1) / pageSize
			}
			if got.TotalPages != want {
				t.Fatalf("totalCount=%d pageSize=%d: totalPages=%d, want %d",
					totalCount, pageSize, got.TotalPages, want)
			}
		}
	}
}

func TestNew_EmptyResultHasNoNavigation(t *testing.T) {
	// Both flags stay false for every valid page number when there is nothing
	// to page through.
	for _, page := range []int{1, 2, 3, 99} {
		got := New([]int{}, 0, page, 10)
		assert.False(t, got.HasPrevious, "page %d", page)
		assert.False(t, got.HasNext, "page %d", page)
		assert.Equal(t, 0, got.TotalPages)
	}
}

func TestNew_NavigationFlags(t *testing.T) {
	t.Run("last page of three", func(t *testing.T) {
		got := New([]int{1, 2, 3, 4, 5}, 25, 3, 10)
		assert.Equal(t, 3, got.TotalPages)
		assert.True(t, got.HasPrevious)
		assert.False(t, got.HasNext)
	})

	t.Run("first page of several", func(t *testing.T) {
		got := New([]int{1}, 25, 1, 10)
		assert.False(t, got.HasPrevious)
		assert.True(t, got.HasNext)
	})

	t.Run("middle page", func(t *testing.T) {
		got := New([]int{1}, 25, 2, 10)
		assert.True(t, got.HasPrevious)
		assert.True(t, got.HasNext)
	})

	t.Run("single page", func(t *testing.T) {
		got := New([]int{1, 2}, 2, 1, 10)
		assert.False(t, got.HasPrevious)
		assert.False(t, got.HasNext)
	})
}

func TestParseParams(t *testing.T) {
	t.Run("defaults when absent", func(t *testing.T) {
		p := ParseParams(url.Values{})
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPageSize, p.Size)
	})

	t.Run("clamps invalid values", func(t *testing.T) {
		p := ParseParams(url.Values{"page": {"-3"}, "pageSize": {"0"}})
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPageSize, p.Size)
	})

	t.Run("caps oversized pages", func(t *testing.T) {
		p := ParseParams(url.Values{"pageSize": {"10000"}})
		assert.Equal(t, MaxPageSize, p.Size)
	})

	t.Run("ignores garbage", func(t *testing.T) {
		p := ParseParams(url.Values{"page": {"abc"}})
		assert.Equal(t, 1, p.Page)
	})

	t.Run("offset", func(t *testing.T) {
		p := Params{Page: 3, Size: 10}
		assert.Equal(t, 20, p.Offset())
	})
}
