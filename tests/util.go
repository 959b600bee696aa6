// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
	"github.com/rm-a0/flippit-sub000/storage/database"
)

// NewConfig returns a TEST configuration that does not depend on the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Flippit",
		Build:     "test",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			AllowedOrigins:            []string{"http://localhost:5000"},
			DisableReqLogs:            true,
		},
		Database: core.DatabaseConfig{Engine: core.EngineMemory},
	}
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

// PrepareDB opens a migrated SQLite database living in t's temp dir.
func PrepareDB(t *testing.T) *gorm.DB {
	t.Helper()

	conf := NewConfig()
	conf.Database = core.DatabaseConfig{
		Engine: core.EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "flippit.db"),
	}
	db, err := database.Open(conf)
	require.NoError(t, err, "database.Open()")

	sqlDB, err := db.DB()
	require.NoError(t, err, "db.DB()")
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(sqlDB, conf.Database.Engine), "database.Migrate()")
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, pwd, role string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if role == "" {
		role = core.RoleUser
	}
	usr := user.User{
		ID:        uuid.New(),
		Name:      name,
		Role:      role,
		Username:  uname,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		require.NoError(t, usr.SetPassword(pwd), "createUser()")
	}
	usr, err := repo.InsertUser(context.Background(), usr)
	require.NoError(t, err, "createUser()")
	return usr
}

func CreateCollection(t *testing.T, repo collection.Repository, name string, creatorID uuid.UUID, start ...time.Time) collection.Collection {
	t.Helper()

	startTime := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	if len(start) > 0 {
		startTime = start[0].UTC()
	}
	col, err := repo.InsertCollection(context.Background(), collection.Collection{
		ID:        uuid.New(),
		Name:      name,
		CreatorID: creatorID,
		StartTime: startTime,
		EndTime:   startTime.Add(time.Hour),
	})
	require.NoError(t, err, "createCollection()")
	return col
}

func CreateCard(t *testing.T, repo card.Repository, question, answer string, creatorID, collectionID uuid.UUID) card.Card {
	t.Helper()

	c, err := repo.InsertCard(context.Background(), card.Card{
		ID:           uuid.New(),
		QuestionType: card.ContentText,
		AnswerType:   card.ContentText,
		Question:     question,
		Answer:       answer,
		CreatorID:    creatorID,
		CollectionID: collectionID,
	})
	require.NoError(t, err, "createCard()")
	return c
}

func CreateLesson(t *testing.T, repo lesson.Repository, answers, stats string, userID, collectionID uuid.UUID) lesson.CompletedLesson {
	t.Helper()

	l, err := repo.InsertLesson(context.Background(), lesson.CompletedLesson{
		ID:             uuid.New(),
		AnswersJSON:    answers,
		StatisticsJSON: stats,
		UserID:         userID,
		CollectionID:   collectionID,
	})
	require.NoError(t, err, "createLesson()")
	return l
}
