package gormrepos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/collection"
)

var collectionColumns = map[string]string{
	collection.SortName:      "LOWER(name)",
	collection.SortStartTime: "start_time",
	collection.SortEndTime:   "end_time",
}

type collectionRepository struct {
	db *gorm.DB
}

var _ collection.Repository = (*collectionRepository)(nil) // interface compliance check

func NewCollectionRepository(db *gorm.DB) *collectionRepository {
	return &collectionRepository{db: db}
}

func (repo collectionRepository) boil(col collection.Collection) collectionRow {
	return collectionRow{
		ID:        col.ID,
		Name:      col.Name,
		CreatorID: col.CreatorID,
		StartTime: col.StartTime.UTC(),
		EndTime:   col.EndTime.UTC(),
	}
}

func (repo collectionRepository) unboil(row collectionRow) collection.Collection {
	return collection.Collection{
		ID:        row.ID,
		Name:      row.Name,
		CreatorID: row.CreatorID,
		StartTime: row.StartTime.UTC(),
		EndTime:   row.EndTime.UTC(),
	}
}

func (repo collectionRepository) QueryCollections(ctx context.Context, flt collection.QueryFilter, opts core.ListOptions) ([]collection.Collection, error) {
	tx := repo.db.WithContext(ctx)
	if flt.CreatorID != uuid.Nil {
		tx = tx.Where("creator_id = ?", flt.CreatorID)
	}
	tx = containsAny(tx, flt.Search, "name")
	tx = applyListOptions(tx, opts, collectionColumns, collection.DefaultOrdering)

	var rows []collectionRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapErr(err, "querying collections")
	}
	cols := make([]collection.Collection, 0, len(rows))
	for _, row := range rows {
		cols = append(cols, repo.unboil(row))
	}
	return cols, nil
}

func (repo collectionRepository) GetCollection(ctx context.Context, id uuid.UUID) (collection.Collection, error) {
	var row collectionRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return collection.Collection{}, trapNotFound(err, collection.ErrNotFound, "finding collection by ID")
	}
	return repo.unboil(row), nil
}

func (repo collectionRepository) CollectionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := exists(repo.db.WithContext(ctx), &collectionRow{}, id)
	if err != nil {
		return false, wrapErr(err, "checking collection existence")
	}
	return found, nil
}

func (repo collectionRepository) InsertCollection(ctx context.Context, col collection.Collection) (collection.Collection, error) {
	if col.ID == uuid.Nil {
		col.ID = uuid.New()
	}
	tx := repo.db.WithContext(ctx)
	if err := checkIDFree(tx, &collectionRow{}, col.ID); err != nil {
		return collection.Collection{}, err
	}
	row := repo.boil(col)
	if err := tx.Create(&row).Error; err != nil {
		return collection.Collection{}, wrapErr(err, "inserting collection")
	}
	return repo.unboil(row), nil
}

func (repo collectionRepository) UpdateCollection(ctx context.Context, col collection.Collection) (collection.Collection, error) {
	row := repo.boil(col)
	res := repo.db.WithContext(ctx).Select("*").Updates(&row)
	if res.Error != nil {
		return collection.Collection{}, wrapErr(res.Error, "updating collection")
	}
	if res.RowsAffected == 0 {
		return collection.Collection{}, collection.ErrNotFound
	}
	return repo.unboil(row), nil
}

// DeleteCollection relies on the ON DELETE CASCADE constraints to remove cards & completed lessons.
func (repo collectionRepository) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&collectionRow{}, "id = ?", id).Error; err != nil {
		return wrapErr(err, "deleting collection")
	}
	return nil
}
