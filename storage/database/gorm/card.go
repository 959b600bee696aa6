package gormrepos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
)

var cardColumns = map[string]string{
	card.SortQuestion: "LOWER(question)",
	card.SortAnswer:   "LOWER(answer)",
}

type cardRepository struct {
	db *gorm.DB
}

var _ card.Repository = (*cardRepository)(nil) // interface compliance check

func NewCardRepository(db *gorm.DB) *cardRepository {
	return &cardRepository{db: db}
}

func (repo cardRepository) boil(c card.Card) cardRow {
	return cardRow{
		ID:           c.ID,
		QuestionType: string(c.QuestionType),
		AnswerType:   string(c.AnswerType),
		Question:     c.Question,
		Answer:       c.Answer,
		Description:  c.Description,
		CreatorID:    c.CreatorID,
		CollectionID: c.CollectionID,
	}
}

func (repo cardRepository) unboil(row cardRow) card.Card {
	return card.Card{
		ID:           row.ID,
		QuestionType: card.ContentType(row.QuestionType),
		AnswerType:   card.ContentType(row.AnswerType),
		Question:     row.Question,
		Answer:       row.Answer,
		Description:  row.Description,
		CreatorID:    row.CreatorID,
		CollectionID: row.CollectionID,
	}
}

func (repo cardRepository) QueryCards(ctx context.Context, flt card.QueryFilter, opts core.ListOptions) ([]card.Card, error) {
	tx := repo.db.WithContext(ctx)
	if flt.CollectionID != uuid.Nil {
		tx = tx.Where("collection_id = ?", flt.CollectionID)
	}
	if flt.CreatorID != uuid.Nil {
		tx = tx.Where("creator_id = ?", flt.CreatorID)
	}
	tx = containsAny(tx, flt.Search, "question", "answer", "COALESCE(description, '')")
	tx = applyListOptions(tx, opts, cardColumns, card.DefaultOrdering)

	var rows []cardRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapErr(err, "querying cards")
	}
	cards := make([]card.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, repo.unboil(row))
	}
	return cards, nil
}

func (repo cardRepository) GetCard(ctx context.Context, id uuid.UUID) (card.Card, error) {
	var row cardRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return card.Card{}, trapNotFound(err, card.ErrNotFound, "finding card by ID")
	}
	return repo.unboil(row), nil
}

func (repo cardRepository) CardExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := exists(repo.db.WithContext(ctx), &cardRow{}, id)
	if err != nil {
		return false, wrapErr(err, "checking card existence")
	}
	return found, nil
}

func (repo cardRepository) InsertCard(ctx context.Context, c card.Card) (card.Card, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	tx := repo.db.WithContext(ctx)
	if err := checkIDFree(tx, &cardRow{}, c.ID); err != nil {
		return card.Card{}, err
	}
	row := repo.boil(c)
	if err := tx.Create(&row).Error; err != nil {
		return card.Card{}, wrapErr(err, "inserting card")
	}
	return repo.unboil(row), nil
}

func (repo cardRepository) UpdateCard(ctx context.Context, c card.Card) (card.Card, error) {
	row := repo.boil(c)
	res := repo.db.WithContext(ctx).Select("*").Updates(&row)
	if res.Error != nil {
		return card.Card{}, wrapErr(res.Error, "updating card")
	}
	if res.RowsAffected == 0 {
		return card.Card{}, card.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo cardRepository) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&cardRow{}, "id = ?", id).Error; err != nil {
		return wrapErr(err, "deleting card")
	}
	return nil
}
