package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
)

var collectionSorting = sorting[collection.Collection]{
	comparators: map[string]comparator[collection.Collection]{
		collection.SortName: func(a, b collection.Collection) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
		collection.SortStartTime: func(a, b collection.Collection) int { return a.StartTime.Compare(b.StartTime) },
		collection.SortEndTime:   func(a, b collection.Collection) int { return a.EndTime.Compare(b.EndTime) },
	},
	fallback: collection.DefaultOrdering,
	id:       func(x collection.Collection) uuid.UUID { return x.ID },
}

type collectionRepository struct {
	db *DB
}

var _ collection.Repository = (*collectionRepository)(nil) // interface compliance check

func NewCollectionRepository(db *DB) *collectionRepository {
	return &collectionRepository{db: db}
}

func (repo *collectionRepository) byID(id uuid.UUID) func(collection.Collection) bool {
	return func(col collection.Collection) bool { return col.ID == id }
}

func (repo *collectionRepository) QueryCollections(_ context.Context, flt collection.QueryFilter, opts core.ListOptions) ([]collection.Collection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keep := func(col collection.Collection) bool {
		if flt.CreatorID != uuid.Nil && col.CreatorID != flt.CreatorID {
			return false
		}
		return core.ContainsFold(col.Name, flt.Search)
	}
	return list(repo.db.collections, keep, opts, collectionSorting), nil
}

func (repo *collectionRepository) GetCollection(_ context.Context, id uuid.UUID) (collection.Collection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := indexOf(repo.db.collections, repo.byID(id)); i >= 0 {
		return repo.db.collections[i], nil
	}
	return collection.Collection{}, collection.ErrNotFound
}

func (repo *collectionRepository) CollectionExists(_ context.Context, id uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return indexOf(repo.db.collections, repo.byID(id)) >= 0, nil
}

func (repo *collectionRepository) InsertCollection(_ context.Context, col collection.Collection) (collection.Collection, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if col.ID == uuid.Nil {
		col.ID = uuid.New()
	}
	if indexOf(repo.db.collections, func(c collection.Collection) bool { return c.ID == col.ID }) >= 0 {
		return collection.Collection{}, core.NewDuplicateIDError()
	}
	repo.db.collections = append(repo.db.collections, col)
	return col, nil
}

func (repo *collectionRepository) UpdateCollection(_ context.Context, col collection.Collection) (collection.Collection, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := indexOf(repo.db.collections, repo.byID(col.ID))
	if i < 0 {
		return collection.Collection{}, collection.ErrNotFound
	}
	repo.db.collections[i] = col
	return col, nil
}

// DeleteCollection also removes the collection's cards and completed lessons.
func (repo *collectionRepository) DeleteCollection(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.collections = filter(repo.db.collections, func(col collection.Collection) bool { return col.ID != id })
	repo.db.cards = filter(repo.db.cards, func(c card.Card) bool { return c.CollectionID != id })
	repo.db.lessons = filter(repo.db.lessons, func(l lesson.CompletedLesson) bool { return l.CollectionID != id })
	return nil
}
