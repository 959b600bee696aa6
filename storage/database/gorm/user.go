package gormrepos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
)

var userColumns = map[string]string{
	user.SortName:      "LOWER(name)",
	user.SortRole:      "role",
	user.SortCreatedAt: "created_at",
}

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		PhotoURL:     usr.PhotoURL,
		Role:         usr.Role,
		Username:     core.StringPtr(usr.Username),
		PasswordHash: string(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	usr := user.User{
		ID:        row.ID,
		Name:      row.Name,
		PhotoURL:  row.PhotoURL,
		Role:      row.Role,
		Username:  core.StringValue(row.Username),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.PasswordHash != "" {
		usr.PasswordHash = []byte(row.PasswordHash)
	}
	return usr
}

func (repo userRepository) unboilSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unboil(row))
	}
	return users
}

func (repo userRepository) QueryUsers(ctx context.Context, flt user.QueryFilter, opts core.ListOptions) ([]user.User, error) {
	tx := containsAny(repo.db.WithContext(ctx), flt.Search, "name")
	tx = applyListOptions(tx, opts, userColumns, user.DefaultOrdering)

	var rows []userRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapErr(err, "querying users")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, id uuid.UUID) (user.User, error) {
	var row userRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "finding user by ID")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		return user.User{}, trapNotFound(err, user.ErrNotFound, "finding user by username")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	found, err := exists(repo.db.WithContext(ctx), &userRow{}, id)
	if err != nil {
		return false, wrapErr(err, "checking user existence")
	}
	return found, nil
}

func (repo userRepository) UsernameExists(ctx context.Context, username string, excludedID uuid.UUID) (bool, error) {
	var n int64
	err := repo.db.WithContext(ctx).Model(&userRow{}).
		Where("username = ? AND id <> ?", username, excludedID).
		Count(&n).Error
	if err != nil {
		return false, wrapErr(err, "checking username uniqueness")
	}
	return n > 0, nil
}

func (repo userRepository) InsertUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	tx := repo.db.WithContext(ctx)
	if err := checkIDFree(tx, &userRow{}, usr.ID); err != nil {
		return user.User{}, err
	}
	row := repo.boil(usr)
	if err := tx.Create(&row).Error; err != nil {
		return user.User{}, wrapErr(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.boil(usr)
	res := repo.db.WithContext(ctx).Select("*").Updates(&row)
	if res.Error != nil {
		return user.User{}, wrapErr(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unboil(row), nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&userRow{}, "id = ?", id).Error; err != nil {
		return wrapErr(err, "deleting user")
	}
	return nil
}
