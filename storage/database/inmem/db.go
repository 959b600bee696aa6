// Package inmemdb is a list based, non persistent store. Data lives as long as the DB value.
package inmemdb

import (
	"bytes"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
)

// DB holds every table; a single lock keeps cascading deletes consistent.
type DB struct {
	sync.RWMutex
	users       []user.User
	collections []collection.Collection
	cards       []card.Card
	lessons     []lesson.CompletedLesson
}

func Open() (*DB, error) {
	return &DB{}, nil
}

type comparator[T any] func(a, b T) int

// sorting describes how a table is listed: comparators by API field name, the ordering used
// when none is requested and the id accessor used to break ties, as the relational store does.
type sorting[T any] struct {
	comparators map[string]comparator[T]
	fallback    []core.Ordering
	id          func(T) uuid.UUID
}

// sortBy orders items in place following ordering (or s.fallback), then by id.
// Fields unknown to the comparators are skipped.
func sortBy[T any](items []T, ordering []core.Ordering, s sorting[T]) {
	if len(ordering) == 0 {
		ordering = s.fallback
	}
	if len(ordering) == 0 && s.id == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := s.comparators[ord.Field]
			if !ok {
				continue
			}
			if c := cmp(items[i], items[j]); c != 0 {
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
		}
		if s.id != nil {
			a, b := s.id(items[i]), s.id(items[j])
			return bytes.Compare(a[:], b[:]) < 0
		}
		return false
	})
}

// filter returns a copy of the items matching keep.
func filter[T any](items []T, keep func(T) bool) []T {
	res := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			res = append(res, item)
		}
	}
	return res
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// list filters, sorts and pages items.
func list[T any](items []T, keep func(T) bool, opts core.ListOptions, s sorting[T]) []T {
	res := filter(items, keep)
	sortBy(res, opts.Ordering, s)
	return core.Paginate(res, opts.Offset, opts.Limit)
}
