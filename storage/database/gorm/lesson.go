package gormrepos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/lesson"
)

type lessonRepository struct {
	db *gorm.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *gorm.DB) *lessonRepository {
	return &lessonRepository{db: db}
}

func (repo lessonRepository) boil(l lesson.CompletedLesson) lessonRow {
	return lessonRow{
		ID:             l.ID,
		AnswersJSON:    l.AnswersJSON,
		StatisticsJSON: l.StatisticsJSON,
		UserID:         l.UserID,
		CollectionID:   l.CollectionID,
	}
}

func (repo lessonRepository) unboil(row lessonRow) lesson.CompletedLesson {
	return lesson.CompletedLesson{
		ID:             row.ID,
		AnswersJSON:    row.AnswersJSON,
		StatisticsJSON: row.StatisticsJSON,
		UserID:         row.UserID,
		CollectionID:   row.CollectionID,
	}
}

func (repo lessonRepository) QueryLessons(ctx context.Context, flt lesson.QueryFilter, opts core.ListOptions) ([]lesson.CompletedLesson, error) {
	tx := repo.db.WithContext(ctx)
	if flt.UserID != uuid.Nil {
		tx = tx.Where("user_id = ?", flt.UserID)
	}
	if flt.CollectionID != uuid.Nil {
		tx = tx.Where("collection_id = ?", flt.CollectionID)
	}
	tx = containsAny(tx, flt.Search, "CAST(user_id AS TEXT)", "CAST(collection_id AS TEXT)")
	tx = containsAny(tx, flt.Content, "answers_json", "statistics_json")
	tx = applyListOptions(tx, opts, nil, nil)

	var rows []lessonRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapErr(err, "querying completed lessons")
	}
	lessons := make([]lesson.CompletedLesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, repo.unboil(row))
	}
	return lessons, nil
}

func (repo lessonRepository) GetLesson(ctx context.Context, id uuid.UUID) (lesson.CompletedLesson, error) {
	var row lessonRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return lesson.CompletedLesson{}, trapNotFound(err, lesson.ErrNotFound, "finding completed lesson by ID")
	}
	return repo.unboil(row), nil
}

func (repo lessonRepository) LessonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := exists(repo.db.WithContext(ctx), &lessonRow{}, id)
	if err != nil {
		return false, wrapErr(err, "checking completed lesson existence")
	}
	return found, nil
}

func (repo lessonRepository) InsertLesson(ctx context.Context, l lesson.CompletedLesson) (lesson.CompletedLesson, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	tx := repo.db.WithContext(ctx)
	if err := checkIDFree(tx, &lessonRow{}, l.ID); err != nil {
		return lesson.CompletedLesson{}, err
	}
	row := repo.boil(l)
	if err := tx.Create(&row).Error; err != nil {
		return lesson.CompletedLesson{}, wrapErr(err, "inserting completed lesson")
	}
	return repo.unboil(row), nil
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, l lesson.CompletedLesson) (lesson.CompletedLesson, error) {
	row := repo.boil(l)
	res := repo.db.WithContext(ctx).Select("*").Updates(&row)
	if res.Error != nil {
		return lesson.CompletedLesson{}, wrapErr(res.Error, "updating completed lesson")
	}
	if res.RowsAffected == 0 {
		return lesson.CompletedLesson{}, lesson.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&lessonRow{}, "id = ?", id).Error; err != nil {
		return wrapErr(err, "deleting completed lesson")
	}
	return nil
}
