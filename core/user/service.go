package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Repository interface {
	// QueryUsers applies filter then ListOptions ordering & paging.
	QueryUsers(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	// UsernameExists ignores the user identified by excludedID.
	UsernameExists(ctx context.Context, username string, excludedID uuid.UUID) (bool, error)
	InsertUser(ctx context.Context, usr User) (User, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) GetAll(ctx context.Context, q core.PageQuery) ([]ListModel, error) {
	opts, err := q.ListOptions(sortable...)
	if err != nil {
		return nil, err
	}
	users, err := svc.repo.QueryUsers(ctx, QueryFilter{Search: core.CleanString(q.Filter)}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return ToListModels(users), nil
}

func (svc *Service) GetByID(ctx context.Context, id uuid.UUID) (DetailModel, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	return ToDetailModel(usr), nil
}

// GetEntity returns the User itself, credentials included.
func (svc *Service) GetEntity(ctx context.Context, id uuid.UUID) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

// Search returns the users whose name contains text, ignoring case.
func (svc *Service) Search(ctx context.Context, text string) ([]ListModel, error) {
	users, err := svc.repo.QueryUsers(ctx, QueryFilter{Search: core.CleanString(text)}, core.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "searching users")
	}
	return ToListModels(users), nil
}

// CreateOrUpdate updates the user identified by model.ID if it exists, otherwise creates it.
func (svc *Service) CreateOrUpdate(ctx context.Context, model DetailModel) (DetailModel, error) {
	if model.ID != uuid.Nil {
		exists, err := svc.repo.UserExists(ctx, model.ID)
		if err != nil {
			return DetailModel{}, errors.Wrap(err, "checking user existence")
		}
		if exists {
			return svc.Update(ctx, model.ID, model)
		}
	}
	return svc.Create(ctx, model)
}

func (svc *Service) Create(ctx context.Context, model DetailModel) (DetailModel, error) {
	model.clean()
	if err := svc.validate.Struct(model); err != nil {
		return DetailModel{}, err
	}
	if err := core.CheckIDFree(ctx, model.ID, svc.repo.UserExists); err != nil {
		return DetailModel{}, err
	}

	usr := model.toEntity()
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	if usr.Role == "" {
		usr.Role = core.RoleUser
	}
	now := time.Now().UTC()
	usr.CreatedAt = now
	usr.UpdatedAt = now

	usr, err := svc.repo.InsertUser(ctx, usr)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "inserting user")
	}
	return ToDetailModel(usr), nil
}

// Update replaces the profile of the user identified by id. model.ID is ignored;
// credentials are kept, and so is the role when model.Role is empty.
func (svc *Service) Update(ctx context.Context, id uuid.UUID, model DetailModel) (DetailModel, error) {
	orig, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return DetailModel{}, err
	}
	model.clean()
	if err = svc.validate.Struct(model); err != nil {
		return DetailModel{}, err
	}
	usr := model.toEntity()
	usr.ID = orig.ID
	if usr.Role == "" {
		usr.Role = orig.Role
	}
	usr.Username = orig.Username
	usr.PasswordHash = orig.PasswordHash
	usr.CreatedAt = orig.CreatedAt
	usr.UpdatedAt = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "updating user")
	}
	return ToDetailModel(usr), nil
}

func (svc *Service) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := svc.repo.UserExists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking user existence")
	}
	if !exists {
		return ErrNotFound
	}
	return svc.repo.DeleteUser(ctx, id)
}

// Register creates an account with the default User role.
func (svc *Service) Register(ctx context.Context, rm RegisterModel) (DetailModel, error) {
	rm.clean()
	if err := svc.validate.Struct(rm); err != nil {
		return DetailModel{}, err
	}
	if err := svc.checkUniqueness(ctx, rm.Username, uuid.Nil); err != nil {
		return DetailModel{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.New(),
		Name:      rm.Name,
		Role:      core.RoleUser,
		Username:  rm.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(rm.Password); err != nil {
		return DetailModel{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.InsertUser(ctx, usr)
	if err != nil {
		return DetailModel{}, errors.Wrap(err, "inserting user")
	}
	return ToDetailModel(usr), nil
}

// Authenticate returns the user matching the credentials, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if len(usr.PasswordHash) == 0 || usr.CheckPassword(pwd) != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

// SaveAccount updates or creates the account identified by username; used by the admin CLI.
func (svc *Service) SaveAccount(ctx context.Context, username, name, pwd string, isAdmin bool) (User, error) {
	username = core.CleanString(username, true /* lower */)
	if username == "" || pwd == "" {
		return User{}, core.NewArgumentError("username and password are required")
	}

	usr, err := svc.repo.GetUserByUsername(ctx, username)
	exists := err == nil
	if err != nil && !core.IsNotFound(err) {
		return User{}, errors.Wrap(err, "finding user by username")
	}

	now := time.Now().UTC()
	if !exists {
		usr = User{ID: uuid.New(), Username: username, Role: core.RoleUser, CreatedAt: now}
	}
	if name = core.CleanString(name); name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = username
	}
	if isAdmin {
		usr.Role = core.RoleAdmin
	}
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	if exists {
		return svc.repo.UpdateUser(ctx, usr)
	}
	return svc.repo.InsertUser(ctx, usr)
}

// SetPassword replaces the password of the account identified by username.
func (svc *Service) SetPassword(ctx context.Context, username, pwd string) error {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *Service) checkUniqueness(ctx context.Context, username string, excludedID uuid.UUID) error {
	exists, err := svc.repo.UsernameExists(ctx, username, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}
