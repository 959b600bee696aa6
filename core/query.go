package core

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kat-co/vala"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Ordering is a single sort key. Field is the API (JSON) name of the sorted field.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// PageQuery holds the listing parameters shared by every GetAll operation.
type PageQuery struct {
	Filter   string `query:"filter"`
	SortBy   string `query:"sortBy"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

// NewPageQuery returns a PageQuery with default paging, to be used before binding request params.
func NewPageQuery() PageQuery {
	return PageQuery{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Validate checks that Page and PageSize are both >= 1 and that the Offset they give fits in an int.
func (q PageQuery) Validate() error {
	err := vala.BeginValidation().Validate(
		atLeastOne(q.Page, "page"),
		atLeastOne(q.PageSize, "pageSize"),
	).Check()
	if err == nil {
		err = vala.BeginValidation().Validate(offsetFits(q.Page, q.PageSize)).Check()
	}
	if err != nil {
		return NewArgumentError(strings.TrimSpace(err.Error()))
	}
	return nil
}

// Offset is the number of records to skip.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Limit is the number of records to take.
func (q PageQuery) Limit() int {
	return q.PageSize
}

// ListOptions is what repositories need to sort & page a listing.
type ListOptions struct {
	Ordering []Ordering
	Offset   int
	Limit    int
}

// ListOptions validates the query and converts it for the repositories.
func (q PageQuery) ListOptions(sortable ...string) (ListOptions, error) {
	if err := q.Validate(); err != nil {
		return ListOptions{}, err
	}
	ordering, err := q.Ordering(sortable...)
	if err != nil {
		return ListOptions{}, err
	}
	return ListOptions{Ordering: ordering, Offset: q.Offset(), Limit: q.Limit()}, nil
}

// Ordering parses SortBy: comma separated fields, a leading "-" meaning descending.
// Only fields listed in allowed are accepted.
func (q PageQuery) Ordering(allowed ...string) ([]Ordering, error) {
	sortBy := strings.TrimSpace(q.SortBy)
	if sortBy == "" {
		return nil, nil
	}
	sorted := append([]string(nil), allowed...)
	sort.Strings(sorted)

	var orderings []Ordering
	for _, field := range strings.Split(sortBy, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		if i := sort.SearchStrings(sorted, field); i >= len(sorted) || sorted[i] != field {
			return nil, NewArgumentError(fmt.Sprintf("cannot sort by %q", field))
		}
		orderings = append(orderings, Ordering{Field: field, Ascending: !descending})
	}
	return orderings, nil
}

// Paginate applies Skip/Take to an already filtered & sorted slice. A limit <= 0 takes everything.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || limit > len(items)-offset {
		end = len(items)
	}
	return items[offset:end]
}

func atLeastOne(val int, name string) vala.Checker {
	return func() (bool, string) {
		return val >= 1, fmt.Sprintf("%s must be greater than or equal to 1 (got %d)", name, val)
	}
}

// offsetFits fails when (page-1)*pageSize would overflow an int. page and pageSize must be >= 1.
func offsetFits(page, pageSize int) vala.Checker {
	return func() (bool, string) {
		return page-1 <= math.MaxInt/pageSize, fmt.Sprintf("page is out of range (got %d)", page)
	}
}
