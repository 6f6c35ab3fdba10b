package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/article"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/notification"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		UserSvc         *user.Service
		CatalogSvc      *catalog.Service
		ProgressSvc     *progress.Service
		RewardSvc       *reward.Service
		ArticleSvc      *article.Service
		NotificationSvc *notification.Service

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		// Shutdown is called when an integrity error is caught; the process
		// should stop gracefully.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.Shutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.opts)
	registerCatalogAPI(api, jwt, s.opts)
	registerProgressAPI(api, jwt, s.opts)
	registerRewardAPI(api, jwt, s.opts)
	registerArticleAPI(api, jwt, s.opts)
	registerNotificationAPI(api, jwt, s.opts)
	registerAdminAPI(api, jwt, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
