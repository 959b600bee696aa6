package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageQuery_Validate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		wantErr  bool
	}{
		{name: "defaults", page: DefaultPage, pageSize: DefaultPageSize},
		{name: "page 0", page: 0, pageSize: 10, wantErr: true},
		{name: "negative page", page: -3, pageSize: 10, wantErr: true},
		{name: "pageSize 0", page: 1, pageSize: 0, wantErr: true},
		{name: "both invalid", page: 0, pageSize: -1, wantErr: true},
		{name: "large page", page: 1000, pageSize: 1},
		{name: "largest page", page: math.MaxInt, pageSize: 1},
		{name: "offset overflows", page: math.MaxInt/4 + 2, pageSize: 4, wantErr: true},
		{name: "largest pageSize", page: 1, pageSize: math.MaxInt},
		{name: "offset overflows with largest pageSize", page: 3, pageSize: math.MaxInt, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PageQuery{Page: tt.page, PageSize: tt.pageSize}.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.IsType(t, &ArgumentError{}, err)
		})
	}
}

func TestPageQuery_OffsetLimit(t *testing.T) {
	q := PageQuery{Page: 3, PageSize: 20}
	assert.Equal(t, 40, q.Offset())
	assert.Equal(t, 20, q.Limit())

	q = NewPageQuery()
	assert.Equal(t, 0, q.Offset())
	assert.Equal(t, DefaultPageSize, q.Limit())
}

func TestPageQuery_Ordering(t *testing.T) {
	allowed := []string{"name", "role", "createdAt"}

	tests := []struct {
		name    string
		sortBy  string
		want    []Ordering
		wantErr bool
	}{
		{name: "empty", sortBy: ""},
		{name: "blank", sortBy: "   "},
		{name: "ascending", sortBy: "name", want: []Ordering{{Field: "name", Ascending: true}}},
		{name: "descending", sortBy: "-createdAt", want: []Ordering{{Field: "createdAt"}}},
		{
			name:   "multiple",
			sortBy: "role, -name",
			want:   []Ordering{{Field: "role", Ascending: true}, {Field: "name"}},
		},
		{name: "skips empty fields", sortBy: "name,,-", want: []Ordering{{Field: "name", Ascending: true}}},
		{name: "unknown field", sortBy: "name,lol", wantErr: true},
		{name: "case sensitive", sortBy: "Name", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageQuery{SortBy: tt.sortBy}.Ordering(allowed...)
			if tt.wantErr {
				assert.IsType(t, &ArgumentError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageQuery_ListOptions(t *testing.T) {
	opts, err := PageQuery{SortBy: "-name", Page: 2, PageSize: 5}.ListOptions("name")
	require.NoError(t, err)
	assert.Equal(t, ListOptions{Ordering: []Ordering{{Field: "name"}}, Offset: 5, Limit: 5}, opts)

	_, err = PageQuery{Page: 0, PageSize: 5}.ListOptions("name")
	assert.Error(t, err)

	_, err = PageQuery{SortBy: "name", Page: 1, PageSize: 5}.ListOptions()
	assert.Error(t, err, "no sortable field")
}

func TestOrdering_String(t *testing.T) {
	assert.Equal(t, "name ASC", Ordering{Field: "name", Ascending: true}.String())
	assert.Equal(t, "created_at DESC", Ordering{Field: "created_at"}.String())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{name: "first page", offset: 0, limit: 2, want: []int{1, 2}},
		{name: "middle page", offset: 2, limit: 2, want: []int{3, 4}},
		{name: "last page", offset: 4, limit: 2, want: []int{5}},
		{name: "past the end", offset: 5, limit: 2, want: []int{}},
		{name: "no limit", offset: 1, limit: 0, want: []int{2, 3, 4, 5}},
		{name: "negative offset", offset: -8, limit: 2, want: []int{}},
		{name: "huge limit", offset: 3, limit: math.MaxInt, want: []int{4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(items, tt.offset, tt.limit))
		})
	}
}
