package inmemdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
)

func TestList(t *testing.T) {
	type pair struct {
		key string
		val int
	}
	byField := sorting[pair]{comparators: map[string]comparator[pair]{
		"key": func(a, b pair) int { return len(a.key) - len(b.key) },
		"val": func(a, b pair) int { return a.val - b.val },
	}}
	items := []pair{{"ccc", 1}, {"a", 2}, {"bb", 2}, {"dd", 3}}
	keys := func(pairs []pair) []string {
		res := make([]string, 0, len(pairs))
		for _, p := range pairs {
			res = append(res, p.key)
		}
		return res
	}
	all := func(pair) bool { return true }

	tests := []struct {
		name string
		keep func(pair) bool
		opts core.ListOptions
		want []string
	}{
		{name: "untouched", keep: all, want: []string{"ccc", "a", "bb", "dd"}},
		{name: "stable", keep: all, opts: core.ListOptions{Ordering: []core.Ordering{{Field: "val", Ascending: true}}}, want: []string{"ccc", "a", "bb", "dd"}},
		{
			name: "second key",
			keep: all,
			opts: core.ListOptions{Ordering: []core.Ordering{{Field: "val"}, {Field: "key"}}},
			want: []string{"dd", "bb", "a", "ccc"},
		},
		{name: "unknown key ignored", keep: all, opts: core.ListOptions{Ordering: []core.Ordering{{Field: "nope"}}}, want: []string{"ccc", "a", "bb", "dd"}},
		{name: "filtered", keep: func(p pair) bool { return p.val == 2 }, want: []string{"a", "bb"}},
		{name: "paged", keep: all, opts: core.ListOptions{Offset: 1, Limit: 2}, want: []string{"a", "bb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(list(items, tt.keep, tt.opts, byField)))
		})
	}
	assert.Equal(t, []string{"ccc", "a", "bb", "dd"}, keys(items), "source is never reordered")
}

func TestQueryCollections_DefaultOrdering(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewCollectionRepository(db)

	insert := func(id, name string) collection.Collection {
		col, err := repo.InsertCollection(ctx, collection.Collection{ID: uuid.MustParse(id), Name: name})
		require.NoError(t, err)
		return col
	}
	secondB := insert("ffffffff-0000-0000-0000-000000000000", "b")
	upperA := insert("cccccccc-0000-0000-0000-000000000000", "A")
	firstB := insert("11111111-0000-0000-0000-000000000000", "B")

	got, err := repo.QueryCollections(ctx, collection.QueryFilter{}, core.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []collection.Collection{upperA, firstB, secondB}, got, "by name ignoring case, then by id")

	got, err = repo.QueryCollections(ctx, collection.QueryFilter{}, core.ListOptions{
		Ordering: []core.Ordering{{Field: collection.SortName}},
		Offset:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, []collection.Collection{secondB, upperA}, got, "requested ordering, ties still by id")
}

func TestDeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)

	users := NewUserRepository(db)
	cols := NewCollectionRepository(db)
	cards := NewCardRepository(db)
	lessons := NewLessonRepository(db)

	alice, err := users.InsertUser(ctx, user.User{Name: "Alice", Role: core.RoleUser})
	require.NoError(t, err)
	bob, err := users.InsertUser(ctx, user.User{Name: "Bob", Role: core.RoleUser})
	require.NoError(t, err)

	aliceCol, err := cols.InsertCollection(ctx, collection.Collection{Name: "Alice's", CreatorID: alice.ID})
	require.NoError(t, err)
	bobCol, err := cols.InsertCollection(ctx, collection.Collection{Name: "Bob's", CreatorID: bob.ID})
	require.NoError(t, err)

	_, err = cards.InsertCard(ctx, card.Card{Question: "in alice's", CreatorID: bob.ID, CollectionID: aliceCol.ID})
	require.NoError(t, err)
	_, err = cards.InsertCard(ctx, card.Card{Question: "by alice", CreatorID: alice.ID, CollectionID: bobCol.ID})
	require.NoError(t, err)
	keptCard, err := cards.InsertCard(ctx, card.Card{Question: "kept", CreatorID: bob.ID, CollectionID: bobCol.ID})
	require.NoError(t, err)

	_, err = lessons.InsertLesson(ctx, lesson.CompletedLesson{UserID: alice.ID, CollectionID: bobCol.ID})
	require.NoError(t, err)
	_, err = lessons.InsertLesson(ctx, lesson.CompletedLesson{UserID: bob.ID, CollectionID: aliceCol.ID})
	require.NoError(t, err)
	keptLesson, err := lessons.InsertLesson(ctx, lesson.CompletedLesson{UserID: bob.ID, CollectionID: bobCol.ID})
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, alice.ID))

	remainingCols, _ := cols.QueryCollections(ctx, collection.QueryFilter{}, core.ListOptions{})
	assert.Equal(t, []collection.Collection{bobCol}, remainingCols)
	remainingCards, _ := cards.QueryCards(ctx, card.QueryFilter{}, core.ListOptions{})
	assert.Equal(t, []card.Card{keptCard}, remainingCards)
	remainingLessons, _ := lessons.QueryLessons(ctx, lesson.QueryFilter{}, core.ListOptions{})
	assert.Equal(t, []lesson.CompletedLesson{keptLesson}, remainingLessons)

	found, err := users.UserExists(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, found)
	_, err = users.GetUser(ctx, uuid.New())
	assert.Equal(t, user.ErrNotFound, err)
}
