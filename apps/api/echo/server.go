package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       *user.Service
		CardSvc       *card.Service
		CollectionSvc *collection.Service
		LessonSvc     *lesson.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps      ServerDeps
		app       *echo.Echo
		handler   http.Handler
		server    *http.Server
		jwtConfig middleware.JWTConfig
		errors    chan error
		shutdown  chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.jwtConfig = newJWTConfig(deps.Conf)
	s.setup()

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   deps.Conf.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}).Handler(s.app)

	s.server = &http.Server{
		Addr:    deps.Conf.Server.Address,
		Handler: s.handler,
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	debug := conf.Debug && !conf.TestMode

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = debug
	s.app.HideBanner = true

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerAuthAPI(api, jwt, s.deps.Conf, s.deps.UserSvc, s.deps.Validate)
	registerUserAPI(api, jwt, s.deps.UserSvc, s.deps.CardSvc, s.deps.CollectionSvc, s.deps.LessonSvc)
	registerCardAPI(api, jwt, s.deps.CardSvc)
	registerCollectionAPI(api, jwt, s.deps.CollectionSvc, s.deps.CardSvc, s.deps.LessonSvc)
	registerLessonAPI(api, jwt, s.deps.LessonSvc)
}

// Start listens until the server is shut down; listening errors are sent to Errors().
func (s *Server) Start() {
	s.deps.Logger.Info("API listening on " + s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "listening")
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.server.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.server.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.handler.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+s.deps.Conf.AppName+" API!")
}
