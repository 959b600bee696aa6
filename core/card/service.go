package card

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("card")
	ErrCollectionNotFound = core.NewNotFoundError("collection")
	errUnknownCollection  = errors.New("collection does not exist")
)

type (
	Repository interface {
		// QueryCards applies filter then ListOptions ordering & paging.
		QueryCards(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Card, error)
		GetCard(ctx context.Context, id uuid.UUID) (Card, error)
		CardExists(ctx context.Context, id uuid.UUID) (bool, error)
		InsertCard(ctx context.Context, c Card) (Card, error)
		UpdateCard(ctx context.Context, c Card) (Card, error)
		DeleteCard(ctx context.Context, id uuid.UUID) error
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
	cards, err := svc.repo.QueryCards(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying cards")
	}
	return ToListModels(cards), nil
}

func (svc *Service) GetAll(ctx context.Context, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{}, q)
}

// GetByCollection lists the cards of a collection; fails with ErrCollectionNotFound if it does not exist.
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

func (svc *Service) GetByCreator(ctx context.Context, creatorID uuid.UUID, q core.PageQuery) ([]ListModel, error) {
	return svc.query(ctx, QueryFilter{CreatorID: creatorID}, q)
}

func (svc *Service) GetByID(ctx context.Context, id uuid.UUID) (DetailModel, error) {
	c, err := svc.repo.GetCard(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	return ToDetailModel(c), nil
}

// Search returns the cards whose question, answer or description contains text, ignoring case.
func (svc *Service) Search(ctx context.Context, text string) ([]ListModel, error) {
	cards, err := svc.repo.QueryCards(ctx, QueryFilter{Search: core.CleanString(text)}, core.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "searching cards")
	}
	return ToListModels(cards), nil
}

// CreateOrUpdate updates the card identified by model.ID if it exists, otherwise creates it.
// Only the update path is subject to the owner-or-admin check.
func (svc *Service) CreateOrUpdate(ctx context.Context, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	if model.ID != uuid.Nil {
		exists, err := svc.repo.CardExists(ctx, model.ID)
		if err != nil {
			return DetailModel{}, errors.Wrap(err, "checking card existence")
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
	if err := core.CheckIDFree(ctx, model.ID, svc.repo.CardExists); err != nil {
		return DetailModel{}, err
	}

	c := model.toEntity()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c, err := svc.repo.InsertCard(ctx, c)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "inserting card")
	}
	return ToDetailModel(c), nil
}

// Update replaces the card identified by id; model.ID is ignored.
// The creator can only be reassigned by an admin.
func (svc *Service) Update(ctx context.Context, id uuid.UUID, model DetailModel, roles []string, userID uuid.UUID) (DetailModel, error) {
	orig, err := svc.repo.GetCard(ctx, id)
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
	if err = svc.validateModel(ctx, model); err != nil {
		return DetailModel{}, err
	}

	c, err := svc.repo.UpdateCard(ctx, model.toEntity())
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "updating card")
	}
	return ToDetailModel(c), nil
}

// Delete removes the card identified by id if the caller owns it or is an admin.
func (svc *Service) Delete(ctx context.Context, id uuid.UUID, roles []string, userID uuid.UUID) error {
	c, err := svc.repo.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if err = core.CheckOwnerOrAdmin(roles, userID, c.CreatorID); err != nil {
		return err
	}
	return svc.repo.DeleteCard(ctx, id)
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
