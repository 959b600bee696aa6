package gormrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
	gormrepos "github.com/rm-a0/flippit-sub000/storage/database/gorm"
	testutil "github.com/rm-a0/flippit-sub000/tests"
)

var base = time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)

func userNames(users []user.User) []string {
	res := make([]string, 0, len(users))
	for _, u := range users {
		res = append(res, u.Name)
	}
	return res
}

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := gormrepos.NewUserRepository(testutil.PrepareDB(t))

	photo := "https://example.com/alice.png"
	usr := user.User{
		ID:        uuid.New(),
		Name:      "Alice",
		PhotoURL:  &photo,
		Role:      core.RoleAdmin,
		Username:  "alice",
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, usr.SetPassword("Pass123!"))

	_, err := repo.InsertUser(ctx, usr)
	require.NoError(t, err)

	got, err := repo.GetUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr, got)

	got, err = repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.NoError(t, got.CheckPassword("Pass123!"))

	_, err = repo.GetUser(ctx, uuid.New())
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.GetUserByUsername(ctx, "")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_NoCredentials(t *testing.T) {
	ctx := context.Background()
	repo := gormrepos.NewUserRepository(testutil.PrepareDB(t))

	// several users without a username must not clash on the unique constraint
	a := testutil.CreateUser(t, repo, "Anonymous A", "", "", "")
	testutil.CreateUser(t, repo, "Anonymous B", "", "", "")

	got, err := repo.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Username)
	assert.Nil(t, got.PasswordHash)
}

func TestUserRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := gormrepos.NewUserRepository(testutil.PrepareDB(t))
	usr := testutil.CreateUser(t, repo, "Alice", "alice", "", "")

	found, err := repo.UserExists(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.UserExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.UsernameExists(ctx, "alice", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.UsernameExists(ctx, "alice", usr.ID)
	require.NoError(t, err)
	assert.False(t, found, "the excluded user is ignored")
}

func TestUserRepository_QueryUsers(t *testing.T) {
	ctx := context.Background()
	repo := gormrepos.NewUserRepository(testutil.PrepareDB(t))
	testutil.CreateUser(t, repo, "Charlie", "", "", core.RoleAdmin, base)
	testutil.CreateUser(t, repo, "alice", "", "", "", base.Add(time.Hour))
	testutil.CreateUser(t, repo, "Bob_100%", "", "", "", base.Add(2*time.Hour))

	tests := []struct {
		name   string
		filter user.QueryFilter
		opts   core.ListOptions
		want   []string
	}{
		{name: "default order", want: []string{"alice", "Bob_100%", "Charlie"}},
		{name: "newest first", opts: core.ListOptions{Ordering: []core.Ordering{{Field: user.SortCreatedAt}}}, want: []string{"Bob_100%", "alice", "Charlie"}},
		{
			name: "role then name",
			opts: core.ListOptions{Ordering: []core.Ordering{{Field: user.SortRole}, {Field: user.SortName, Ascending: true}}},
			want: []string{"alice", "Bob_100%", "Charlie"},
		},
		{name: "paged", opts: core.ListOptions{Offset: 1, Limit: 1}, want: []string{"Bob_100%"}},
		{name: "past the end", opts: core.ListOptions{Offset: 3, Limit: 2}, want: []string{}},
		{name: "search ignores case", filter: user.QueryFilter{Search: "LI"}, want: []string{"alice", "Charlie"}},
		{name: "search escapes wildcards", filter: user.QueryFilter{Search: "_100%"}, want: []string{"Bob_100%"}},
		{name: "wildcards are literal", filter: user.QueryFilter{Search: "%"}, want: []string{"Bob_100%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryUsers(ctx, tt.filter, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, userNames(got))
		})
	}
}

func TestUserRepository_UpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := gormrepos.NewUserRepository(testutil.PrepareDB(t))
	usr := testutil.CreateUser(t, repo, "Alice", "alice", "Pass123!", "", base)

	usr.Name = "Alice Cooper"
	usr.PhotoURL = nil
	usr.Role = core.RoleAdmin
	usr.UpdatedAt = base.Add(time.Hour)
	_, err := repo.UpdateUser(ctx, usr)
	require.NoError(t, err)

	got, err := repo.GetUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr, got)

	_, err = repo.UpdateUser(ctx, user.User{ID: uuid.New(), Name: "Nobody", Role: core.RoleUser})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	users := gormrepos.NewUserRepository(db)
	cols := gormrepos.NewCollectionRepository(db)
	cards := gormrepos.NewCardRepository(db)
	lessons := gormrepos.NewLessonRepository(db)

	alice := testutil.CreateUser(t, users, "Alice", "", "", "")
	bob := testutil.CreateUser(t, users, "Bob", "", "", "")
	col := testutil.CreateCollection(t, cols, "Alice's", alice.ID)
	bobCol := testutil.CreateCollection(t, cols, "Bob's", bob.ID)
	c := testutil.CreateCard(t, cards, "Q", "A", bob.ID, col.ID)
	l := testutil.CreateLesson(t, lessons, "[]", "{}", bob.ID, col.ID)
	bobCard := testutil.CreateCard(t, cards, "Q", "A", bob.ID, bobCol.ID)

	require.NoError(t, users.DeleteUser(ctx, alice.ID))

	found, err := cols.CollectionExists(ctx, col.ID)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = cards.CardExists(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = lessons.LessonExists(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = cards.CardExists(ctx, bobCard.ID)
	require.NoError(t, err)
	assert.True(t, found)
}
