package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/rm-a0/flippit-sub000/apps/api/echo"
	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
	logsvc "github.com/rm-a0/flippit-sub000/services/logger"
	"github.com/rm-a0/flippit-sub000/storage/database"
	gormrepos "github.com/rm-a0/flippit-sub000/storage/database/gorm"
	inmemdb "github.com/rm-a0/flippit-sub000/storage/database/inmem"
)

type repositories struct {
	users       user.Repository
	collections collection.Repository
	cards       card.Repository
	lessons     lesson.Repository
	close       func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	repos, err := setUpRepos(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Database.Engine, err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(repos.users, validate)
	cardSvc := card.NewService(repos.cards, repos.collections, validate)
	colSvc := collection.NewService(repos.collections, repos.cards, validate)
	lessonSvc := lesson.NewService(repos.lessons, repos.collections, validate)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			CardSvc:       cardSvc,
			CollectionSvc: colSvc,
			LessonSvc:     lessonSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepos opens the store selected by conf.Database.Engine: the in-memory lists,
// or a migrated relational database.
func setUpRepos(conf *core.Config) (repositories, error) {
	if conf.Database.Engine == core.EngineMemory {
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:       inmemdb.NewUserRepository(db),
			collections: inmemdb.NewCollectionRepository(db),
			cards:       inmemdb.NewCardRepository(db),
			lessons:     inmemdb.NewLessonRepository(db),
			close:       func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return repositories{}, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repositories{}, err
	}
	if err = database.Migrate(sqlDB, conf.Database.Engine); err != nil {
		_ = sqlDB.Close()
		return repositories{}, err
	}
	return repositories{
		users:       gormrepos.NewUserRepository(db),
		collections: gormrepos.NewCollectionRepository(db),
		cards:       gormrepos.NewCardRepository(db),
		lessons:     gormrepos.NewLessonRepository(db),
		close:       sqlDB.Close,
	}, nil
}
