package collection

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("collection")
)

type (
	// Repository persists collections. DeleteCollection also removes the collection's cards and completed lessons.
	Repository interface {
		// QueryCollections applies filter then ListOptions ordering & paging.
		QueryCollections(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Collection, error)
		GetCollection(ctx context.Context, id uuid.UUID) (Collection, error)
		CollectionExists(ctx context.Context, id uuid.UUID) (bool, error)
		InsertCollection(ctx context.Context, col Collection) (Collection, error)
		UpdateCollection(ctx context.Context, col Collection) (Collection, error)
		DeleteCollection(ctx context.Context, id uuid.UUID) error
	}

	// CardLister lists the cards shown in a collection's detail.
	CardLister interface {
		QueryCards(ctx context.Context, filter card.QueryFilter, opts core.ListOptions) ([]card.Card, error)
	}

	Service struct {
		repo     Repository
		cards    CardLister
		validate *validator.Validate
	}
)

func NewService(repo Repository, cards CardLister, validate *validator.Validate) *Service {
	return &Service{repo: repo, cards: cards, validate: validate}
}

func (svc *Service) query(ctx context.Context, filter QueryFilter, q core.PageQuery) ([]ListModel, error) {
	opts, err := q.ListOptions(sortable...)
	if err != nil {
		return nil, err
	}
	filter.Search = core.CleanString(q.Filter)
	cols, err := svc.repo.QueryCollections(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying collections")
	}
	return ToListModels(cols), nil
}

func (svc *Service) GetAll(ctx context.Context, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{}, q)
}

func (svc *Service) GetByCreator(ctx context.Context, creatorID uuid.UUID, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{CreatorID: creatorID}, q)
}

// GetByID returns the collection with its cards.
func (svc *Service) GetByID(ctx context.Context, id uuid.UUID) (DetailModel, error) {
	col, err := svc.repo.GetCollection(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	return svc.detail(ctx, col)
}

func (svc *Service) detail(ctx context.Context, col Collection) (DetailModel, error) {
	cards, err := svc.cards.QueryCards(ctx, card.QueryFilter{CollectionID: col.ID}, core.ListOptions{})
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "querying collection cards")
	}
	return ToDetailModel(col, cards), nil
}

// Search returns the collections whose name contains text, ignoring case.
func (svc *Service) Search(ctx context.Context, text string) ([]ListModel, error) {
	cols, err := svc.repo.QueryCollections(ctx, QueryFilter{Search: core.CleanString(text)}, core.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "searching collections")
	}
	return ToListModels(cols), nil
}

// CreateOrUpdate updates the collection identified by model.ID if it exists, otherwise creates it.
// Only the update path is subject to the owner-or-admin check.
func (svc *Service) CreateOrUpdate(ctx context.Context, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	if model.ID != uuid.Nil {
		exists, err := svc.repo.CollectionExists(ctx, model.ID)
		if err != nil {
			return DetailModel{}, errors.Wrap(err, "checking collection existence")
		}
		if exists {
			return svc.Update(ctx, model.ID, model, roles, userID)
		}
	}
	return svc.Create(ctx, model)
}

func (svc *Service) Create(ctx context.Context, model DetailModel) (DetailModel, error) {
	model.clean()
	if err := svc.validate.Struct(model); err != nil {
		return DetailModel{}, err
	}
	if err := core.CheckIDFree(ctx, model.ID, svc.repo.CollectionExists); err != nil {
		return DetailModel{}, err
	}

	col := model.toEntity()
	if col.ID == uuid.Nil {
		col.ID = uuid.New()
	}
	col, err := svc.repo.InsertCollection(ctx, col)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "inserting collection")
	}
	return ToDetailModel(col, nil), nil
}

// Update replaces the collection identified by id; model.ID and model.Cards are ignored.
// The creator can only be reassigned by an admin.
func (svc *Service) Update(ctx context.Context, id uuid.UUID, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	orig, err := svc.repo.GetCollection(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	if err = core.CheckOwnerOrAdmin(roles, userID, orig.CreatorID); err != nil {
		return DetailModel{}, err
	}

	model.ID = orig.ID
	if model.CreatorID == uuid.Nil || !core.IsAdmin(roles) {
		model.CreatorID = orig.CreatorID
	}
	model.clean()
	if err = svc.validate.Struct(model); err != nil {
		return DetailModel{}, err
	}

	col, err := svc.repo.UpdateCollection(ctx, model.toEntity())
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "updating collection")
	}
	return svc.detail(ctx, col)
}

// Delete removes the collection identified by id, with its cards and completed lessons,
// if the caller owns it or is an admin.
func (svc *Service) Delete(ctx context.Context, id uuid.UUID, roles []string, userID uuid.UUID) error {
	col, err := svc.repo.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	if err = core.CheckOwnerOrAdmin(roles, userID, col.CreatorID); err != nil {
		return err
	}
	return svc.repo.DeleteCollection(ctx, id)
}
