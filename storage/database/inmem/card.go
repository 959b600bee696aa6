package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
)

var cardSorting = sorting[card.Card]{
	comparators: map[string]comparator[card.Card]{
		card.SortQuestion: func(a, b card.Card) int {
			return strings.Compare(strings.ToLower(a.Question), strings.ToLower(b.Question))
		},
		card.SortAnswer: func(a, b card.Card) int {
			return strings.Compare(strings.ToLower(a.Answer), strings.ToLower(b.Answer))
		},
	},
	fallback: card.DefaultOrdering,
	id:       func(x card.Card) uuid.UUID { return x.ID },
}

type cardRepository struct {
	db *DB
}

var _ card.Repository = (*cardRepository)(nil) // interface compliance check

func NewCardRepository(db *DB) *cardRepository {
	return &cardRepository{db: db}
}

func cardMatches(c card.Card, flt card.QueryFilter) bool {
	if flt.CollectionID != uuid.Nil && c.CollectionID != flt.CollectionID {
		return false
	}
	if flt.CreatorID != uuid.Nil && c.CreatorID != flt.CreatorID {
		return false
	}
	if flt.Search == "" {
		return true
	}
	return core.ContainsFold(c.Question, flt.Search) ||
		core.ContainsFold(c.Answer, flt.Search) ||
		core.ContainsFold(core.StringValue(c.Description), flt.Search)
}

func (repo *cardRepository) QueryCards(_ context.Context, flt card.QueryFilter, opts core.ListOptions) ([]card.Card, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keep := func(c card.Card) bool { return cardMatches(c, flt) }
	return list(repo.db.cards, keep, opts, cardSorting), nil
}

func (repo *cardRepository) GetCard(_ context.Context, id uuid.UUID) (card.Card, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := indexOf(repo.db.cards, func(c card.Card) bool { return c.ID == id }); i >= 0 {
		return repo.db.cards[i], nil
	}
	return card.Card{}, card.ErrNotFound
}

func (repo *cardRepository) CardExists(_ context.Context, id uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return indexOf(repo.db.cards, func(c card.Card) bool { return c.ID == id }) >= 0, nil
}

func (repo *cardRepository) InsertCard(_ context.Context, c card.Card) (card.Card, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if indexOf(repo.db.cards, func(x card.Card) bool { return x.ID == c.ID }) >= 0 {
		return card.Card{}, core.NewDuplicateIDError()
	}
	repo.db.cards = append(repo.db.cards, c)
	return c, nil
}

func (repo *cardRepository) UpdateCard(_ context.Context, c card.Card) (card.Card, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := indexOf(repo.db.cards, func(other card.Card) bool { return other.ID == c.ID })
	if i < 0 {
		return card.Card{}, card.ErrNotFound
	}
	repo.db.cards[i] = c
	return c, nil
}

func (repo *cardRepository) DeleteCard(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.cards = filter(repo.db.cards, func(c card.Card) bool { return c.ID != id })
	return nil
}
