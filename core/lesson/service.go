package lesson

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("completed lesson")
	ErrCollectionNotFound = core.NewNotFoundError("collection")
	errUnknownCollection  = errors.New("collection does not exist")
)

// completed lessons have no meaningful sort key
var sortable []string

type (
	Repository interface {
		// QueryLessons applies filter then ListOptions ordering & paging.
		QueryLessons(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]CompletedLesson, error)
		GetLesson(ctx context.Context, id uuid.UUID) (CompletedLesson, error)
		LessonExists(ctx context.Context, id uuid.UUID) (bool, error)
		InsertLesson(ctx context.Context, l CompletedLesson) (CompletedLesson, error)
		UpdateLesson(ctx context.Context, l CompletedLesson) (CompletedLesson, error)
		DeleteLesson(ctx context.Context, id uuid.UUID) error
	}

	// CollectionChecker tells whether a collection exists.
	CollectionChecker interface {
		CollectionExists(ctx context.Context, id uuid.UUID) (bool, error)
	}

	Service struct {
		repo        Repository
		collections CollectionChecker
		validate    *validator.Validate
	}
)

func NewService(repo Repository, collections CollectionChecker, validate *validator.Validate) *Service {
	return &Service{repo: repo, collections: collections, validate: validate}
}

func (svc *Service) query(ctx context.Context, filter QueryFilter, q core.PageQuery) ([]ListModel, error) {
	opts, err := q.ListOptions(sortable...)
	if err != nil {
		return nil, err
	}
	filter.Search = core.CleanString(q.Filter)
	lessons, err := svc.repo.QueryLessons(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying completed lessons")
	}
	return ToListModels(lessons), nil
}

func (svc *Service) GetAll(ctx context.Context, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{}, q)
}

func (svc *Service) GetByUser(ctx context.Context, userID uuid.UUID, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{UserID: userID}, q)
}

// GetByCollection lists the lessons completed on a collection; fails with ErrCollectionNotFound if it does not exist.
func (svc *Service) GetByCollection(ctx context.Context, collectionID uuid.UUID, q core.PageQuery) ([]ListModel, error) {
	exists, err := svc.collections.CollectionExists(ctx, collectionID)
	if err != nil {
		return nil, errors.Wrap(err, "checking collection existence")
	}
	if !exists {
		return nil, ErrCollectionNotFound
	}
	return svc.query(ctx, QueryFilter{CollectionID: collectionID}, q)
}

func (svc *Service) GetByID(ctx context.Context, id uuid.UUID) (DetailModel, error) {
	l, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	return ToDetailModel(l), nil
}

// Search returns the lessons whose answers or statistics contain text, ignoring case.
func (svc *Service) Search(ctx context.Context, text string) ([]ListModel, error) {
	lessons, err := svc.repo.QueryLessons(ctx, QueryFilter{Content: core.CleanString(text)}, core.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "searching completed lessons")
	}
	return ToListModels(lessons), nil
}

// CreateOrUpdate updates the lesson identified by model.ID if it exists, otherwise creates it.
// Only the update path is subject to the owner-or-admin check.
func (svc *Service) CreateOrUpdate(ctx context.Context, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	if model.ID != uuid.Nil {
		exists, err := svc.repo.LessonExists(ctx, model.ID)
		if err != nil {
			return DetailModel{}, errors.Wrap(err, "checking completed lesson existence")
		}
		if exists {
			return svc.Update(ctx, model.ID, model, roles, userID)
		}
	}
	return svc.Create(ctx, model)
}

func (svc *Service) Create(ctx context.Context, model DetailModel) (DetailModel, error) {
	model.clean()
	if err := svc.validateModel(ctx, model); err != nil {
		return DetailModel{}, err
	}
	if err := core.CheckIDFree(ctx, model.ID, svc.repo.LessonExists); err != nil {
		return DetailModel{}, err
	}

	l := model.toEntity()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l, err := svc.repo.InsertLesson(ctx, l)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "inserting completed lesson")
	}
	return ToDetailModel(l), nil
}

// Update replaces the lesson identified by id; model.ID is ignored.
// The lesson's user can only be reassigned by an admin.
func (svc *Service) Update(ctx context.Context, id uuid.UUID, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	orig, err := svc.repo.GetLesson(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	if err = core.CheckOwnerOrAdmin(roles, userID, orig.UserID); err != nil {
		return DetailModel{}, err
	}

	model.ID = orig.ID
	if model.UserID == uuid.Nil || !core.IsAdmin(roles) {
		model.UserID = orig.UserID
	}
	model.clean()
	if err = svc.validateModel(ctx, model); err != nil {
		return DetailModel{}, err
	}

	l, err := svc.repo.UpdateLesson(ctx, model.toEntity())
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "updating completed lesson")
	}
	return ToDetailModel(l), nil
}

// Delete removes the lesson identified by id. Admins only.
func (svc *Service) Delete(ctx context.Context, id uuid.UUID, roles []string) error {
	if err := core.CheckAdmin(roles); err != nil {
		return err
	}
	if _, err := svc.repo.GetLesson(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteLesson(ctx, id)
}

func (svc *Service) validateModel(ctx context.Context, model DetailModel) error {
	if err := svc.validate.Struct(model); err != nil {
		return err
	}
	exists, err := svc.collections.CollectionExists(ctx, model.CollectionID)
	if err != nil {
		return errors.Wrap(err, "checking collection existence")
	}
	if !exists {
		return core.NewValidationError(errUnknownCollection, core.FieldError{Field: "collectionId", Error: errUnknownCollection.Error()})
	}
	return nil
}
