package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
)

var userSorting = sorting[user.User]{
	comparators: map[string]comparator[user.User]{
		user.SortName:      func(a, b user.User) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
		user.SortRole:      func(a, b user.User) int { return strings.Compare(a.Role, b.Role) },
		user.SortCreatedAt: func(a, b user.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	fallback: user.DefaultOrdering,
	id:       func(x user.User) uuid.UUID { return x.ID },
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) byID(id uuid.UUID) func(user.User) bool {
	return func(u user.User) bool { return u.ID == id }
}

func (repo *userRepository) QueryUsers(_ context.Context, flt user.QueryFilter, opts core.ListOptions) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	keep := func(u user.User) bool { return core.ContainsFold(u.Name, flt.Search) }
	return list(repo.db.users, keep, opts, userSorting), nil
}

func (repo *userRepository) GetUser(_ context.Context, id uuid.UUID) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := indexOf(repo.db.users, repo.byID(id)); i >= 0 {
		return repo.db.users[i], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if username != "" {
		if i := indexOf(repo.db.users, func(u user.User) bool { return u.Username == username }); i >= 0 {
			return repo.db.users[i], nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return indexOf(repo.db.users, repo.byID(id)) >= 0, nil
}

func (repo *userRepository) UsernameExists(_ context.Context, username string, excludedID uuid.UUID) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	i := indexOf(repo.db.users, func(u user.User) bool { return u.Username == username && u.ID != excludedID })
	return i >= 0, nil
}

func (repo *userRepository) InsertUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	if indexOf(repo.db.users, func(u user.User) bool { return u.ID == usr.ID }) >= 0 {
		return user.User{}, core.NewDuplicateIDError()
	}
	repo.db.users = append(repo.db.users, usr)
	return usr, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := indexOf(repo.db.users, repo.byID(usr.ID))
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[i] = usr
	return usr, nil
}

// DeleteUser also removes everything the user owns, like the relational store's FKs do.
func (repo *userRepository) DeleteUser(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	owned := make(map[uuid.UUID]bool)
	for _, col := range repo.db.collections {
		if col.CreatorID == id {
			owned[col.ID] = true
		}
	}

	repo.db.users = filter(repo.db.users, func(u user.User) bool { return u.ID != id })
	repo.db.collections = filter(repo.db.collections, func(col collection.Collection) bool { return !owned[col.ID] })
	repo.db.cards = filter(repo.db.cards, func(c card.Card) bool { return c.CreatorID != id && !owned[c.CollectionID] })
	repo.db.lessons = filter(repo.db.lessons, func(l lesson.CompletedLesson) bool { return l.UserID != id && !owned[l.CollectionID] })
	return nil
}
