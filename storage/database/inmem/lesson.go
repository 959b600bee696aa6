package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/lesson"
)

// lessons have no sortable fields, they are listed by id
var lessonSorting = sorting[lesson.CompletedLesson]{
	id: func(l lesson.CompletedLesson) uuid.UUID { return l.ID },
}

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db}
}

func lessonMatches(l lesson.CompletedLesson, flt lesson.QueryFilter) bool {
	if flt.UserID != uuid.Nil && l.UserID != flt.UserID {
		return false
	}
	if flt.CollectionID != uuid.Nil && l.CollectionID != flt.CollectionID {
		return false
	}
	if flt.Search != "" &&
		!core.ContainsFold(l.UserID.String(), flt.Search) &&
		!core.ContainsFold(l.CollectionID.String(), flt.Search) {
		return false
	}
	if flt.Content != "" &&
		!core.ContainsFold(l.AnswersJSON, flt.Content) &&
		!core.ContainsFold(l.StatisticsJSON, flt.Content) {
		return false
	}
	return true
}

func (repo *lessonRepository) QueryLessons(_ context.Context, flt lesson.QueryFilter, opts core.ListOptions) ([]lesson.CompletedLesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keep := func(l lesson.CompletedLesson) bool { return lessonMatches(l, flt) }
	return list(repo.db.lessons, keep, opts, lessonSorting), nil
}

func (repo *lessonRepository) GetLesson(_ context.Context, id uuid.UUID) (lesson.CompletedLesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := indexOf(repo.db.lessons, func(l lesson.CompletedLesson) bool { return l.ID == id }); i >= 0 {
		return repo.db.lessons[i], nil
	}
	return lesson.CompletedLesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) LessonExists(_ context.Context, id uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return indexOf(repo.db.lessons, func(l lesson.CompletedLesson) bool { return l.ID == id }) >= 0, nil
}

func (repo *lessonRepository) InsertLesson(_ context.Context, l lesson.CompletedLesson) (lesson.CompletedLesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if indexOf(repo.db.lessons, func(x lesson.CompletedLesson) bool { return x.ID == l.ID }) >= 0 {
		return lesson.CompletedLesson{}, core.NewDuplicateIDError()
	}
	repo.db.lessons = append(repo.db.lessons, l)
	return l, nil
}

func (repo *lessonRepository) UpdateLesson(_ context.Context, l lesson.CompletedLesson) (lesson.CompletedLesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := indexOf(repo.db.lessons, func(other lesson.CompletedLesson) bool { return other.ID == l.ID })
	if i < 0 {
		return lesson.CompletedLesson{}, lesson.ErrNotFound
	}
	repo.db.lessons[i] = l
	return l, nil
}

func (repo *lessonRepository) DeleteLesson(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.lessons = filter(repo.db.lessons, func(l lesson.CompletedLesson) bool { return l.ID != id })
	return nil
}
