package lesson_test

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	inmemdb "github.com/rm-a0/flippit-sub000/storage/database/inmem"
	testutil "github.com/rm-a0/flippit-sub000/tests"
)

var (
	student = uuid.New()
	other   = uuid.New()
	userR   = []string{core.RoleUser}
	adminR  = []string{core.RoleAdmin}
)

const (
	answers = `[{"cardId":"1","answer":"Paris"}]`
	stats   = `{"correct":1,"total":1}`
)

type fixture struct {
	ctx  context.Context
	repo lesson.Repository
	cols collection.Repository
	svc  *lesson.Service
	col  collection.Collection
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	repo := inmemdb.NewLessonRepository(db)
	cols := inmemdb.NewCollectionRepository(db)
	return fixture{
		ctx:  context.Background(),
		repo: repo,
		cols: cols,
		svc:  lesson.NewService(repo, cols, testutil.NewValidator()),
		col:  testutil.CreateCollection(t, cols, "Geography", other),
	}
}

func ids(lessons []lesson.ListModel) []uuid.UUID {
	res := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		res = append(res, l.ID)
	}
	return res
}

// byID orders ids the way lesson listings do.
func byID(ids ...uuid.UUID) []uuid.UUID {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}

func TestService_Queries(t *testing.T) {
	f := newFixture(t)
	col2 := testutil.CreateCollection(t, f.cols, "History", other)
	l1 := testutil.CreateLesson(t, f.repo, answers, stats, student, f.col.ID)
	l2 := testutil.CreateLesson(t, f.repo, "[]", "{}", other, f.col.ID)
	l3 := testutil.CreateLesson(t, f.repo, "[]", `{"correct":0}`, student, col2.ID)

	t.Run("GetAll", func(t *testing.T) {
		got, err := f.svc.GetAll(f.ctx, core.NewPageQuery())
		require.NoError(t, err)
		all := byID(l1.ID, l2.ID, l3.ID)
		assert.Equal(t, all, ids(got))

		got, err = f.svc.GetAll(f.ctx, core.PageQuery{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, all[2:], ids(got))

		got, err = f.svc.GetAll(f.ctx, core.PageQuery{Filter: student.String()[:8], Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, byID(l1.ID, l3.ID), ids(got))
	})

	t.Run("GetAll rejects sorting", func(t *testing.T) {
		_, err := f.svc.GetAll(f.ctx, core.PageQuery{SortBy: "id", Page: 1, PageSize: 10})
		assert.IsType(t, &core.ArgumentError{}, err)
	})

	t.Run("GetByUser", func(t *testing.T) {
		got, err := f.svc.GetByUser(f.ctx, student, core.NewPageQuery())
		require.NoError(t, err)
		assert.Equal(t, byID(l1.ID, l3.ID), ids(got))
	})

	t.Run("GetByCollection", func(t *testing.T) {
		got, err := f.svc.GetByCollection(f.ctx, f.col.ID, core.NewPageQuery())
		require.NoError(t, err)
		assert.Equal(t, byID(l1.ID, l2.ID), ids(got))

		_, err = f.svc.GetByCollection(f.ctx, uuid.New(), core.NewPageQuery())
		assert.True(t, core.IsNotFound(err), "error = %v", err)
	})

	t.Run("Search", func(t *testing.T) {
		got, err := f.svc.Search(f.ctx, "PARIS")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{l1.ID}, ids(got))

		got, err = f.svc.Search(f.ctx, "correct")
		require.NoError(t, err)
		assert.Equal(t, byID(l1.ID, l3.ID), ids(got))
	})

	t.Run("GetByID", func(t *testing.T) {
		got, err := f.svc.GetByID(f.ctx, l1.ID)
		require.NoError(t, err)
		assert.Equal(t, lesson.DetailModel{
			ID:             l1.ID,
			AnswersJSON:    answers,
			StatisticsJSON: stats,
			UserID:         student,
			CollectionID:   f.col.ID,
		}, got)

		_, err = f.svc.GetByID(f.ctx, uuid.New())
		assert.Equal(t, lesson.ErrNotFound, err)
	})
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Create(f.ctx, lesson.DetailModel{
		AnswersJSON:    " " + answers + " ",
		StatisticsJSON: stats,
		UserID:         student,
		CollectionID:   f.col.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, answers, got.AnswersJSON)

	tests := []struct {
		name  string
		model lesson.DetailModel
	}{
		{name: "blank answers", model: lesson.DetailModel{AnswersJSON: "  ", StatisticsJSON: stats, UserID: student, CollectionID: f.col.ID}},
		{name: "invalid json", model: lesson.DetailModel{AnswersJSON: "{answers", StatisticsJSON: stats, UserID: student, CollectionID: f.col.ID}},
		{name: "no user", model: lesson.DetailModel{AnswersJSON: answers, StatisticsJSON: stats, CollectionID: f.col.ID}},
		{name: "no collection", model: lesson.DetailModel{AnswersJSON: answers, StatisticsJSON: stats, UserID: student}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tt.model)
			assert.IsType(t, validator.ValidationErrors{}, err)
		})
	}

	t.Run("unknown collection", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx, lesson.DetailModel{AnswersJSON: answers, StatisticsJSON: stats, UserID: student, CollectionID: uuid.New()})
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("taken id", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx, lesson.DetailModel{ID: got.ID, AnswersJSON: "[]", StatisticsJSON: "{}", UserID: student, CollectionID: f.col.ID})
		assert.True(t, core.IsDuplicateID(err), "error = %v", err)

		stored, err := f.repo.GetLesson(f.ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, answers, stored.AnswersJSON)
	})
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		callerID uuid.UUID
		userID   uuid.UUID
		wantUser uuid.UUID
		wantErr  bool
	}{
		{name: "owner", roles: userR, callerID: student, wantUser: student},
		{name: "owner cannot reassign", roles: userR, callerID: student, userID: other, wantUser: student},
		{name: "admin reassigns", roles: adminR, callerID: other, userID: other, wantUser: other},
		{name: "not owner", roles: userR, callerID: other, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			l := testutil.CreateLesson(t, f.repo, answers, stats, student, f.col.ID)

			got, err := f.svc.Update(f.ctx, l.ID, lesson.DetailModel{
				AnswersJSON:    "[]",
				StatisticsJSON: "{}",
				UserID:         tt.userID,
				CollectionID:   f.col.ID,
			}, tt.roles, tt.callerID)
			if tt.wantErr {
				assert.True(t, core.IsAuthorizationError(err), "error = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, l.ID, got.ID)
			assert.Equal(t, "[]", got.AnswersJSON)
			assert.Equal(t, tt.wantUser, got.UserID)
		})
	}
}

func TestService_CreateOrUpdate(t *testing.T) {
	f := newFixture(t)
	l := testutil.CreateLesson(t, f.repo, answers, stats, student, f.col.ID)

	model := lesson.DetailModel{ID: l.ID, AnswersJSON: "[]", StatisticsJSON: "{}", UserID: student, CollectionID: f.col.ID}
	_, err := f.svc.CreateOrUpdate(f.ctx, model, userR, other)
	assert.True(t, core.IsAuthorizationError(err), "error = %v", err)

	got, err := f.svc.CreateOrUpdate(f.ctx, model, userR, student)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)

	model.ID = uuid.New()
	got, err = f.svc.CreateOrUpdate(f.ctx, model, userR, other)
	require.NoError(t, err)
	assert.Equal(t, model.ID, got.ID)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		wantErr bool
	}{
		{name: "admin", roles: adminR},
		{name: "owner is not enough", roles: userR, wantErr: true},
		{name: "anonymous", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			l := testutil.CreateLesson(t, f.repo, answers, stats, student, f.col.ID)

			err := f.svc.Delete(f.ctx, l.ID, tt.roles)
			exists, eErr := f.repo.LessonExists(f.ctx, l.ID)
			require.NoError(t, eErr)
			if tt.wantErr {
				assert.True(t, core.IsAuthorizationError(err), "error = %v", err)
				assert.True(t, exists)
				return
			}
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, lesson.ErrNotFound, f.svc.Delete(f.ctx, uuid.New(), adminR))
	})
}
