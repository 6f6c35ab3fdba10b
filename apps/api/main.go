package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/finquest/finquest/apps/api/echo"
	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/article"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/notification"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
	emailsvc "github.com/finquest/finquest/services/email"
	sendgridmail "github.com/finquest/finquest/services/email/sendgrid"
	logsvc "github.com/finquest/finquest/services/logger"
	"github.com/finquest/finquest/storage/database"
	sqlxrepos "github.com/finquest/finquest/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, core.Conf.AppName+"-API : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug || core.Conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	if err := run(logger); err != nil {
		logger.Error("api: fatal error", err)
		os.Exit(1)
	}
}

func run(logger core.Logger) error {
	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = database.Migrate(db.DB); err != nil {
		return errors.Wrap(err, "migrating database")
	}

	// set up validation
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	catalog.RegisterValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(logger)
	}
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))
	progressSvc := progress.NewService(
		database.TxDB{DB: db},
		sqlxrepos.NewProgressRepository(db),
		sqlxrepos.NewProfileRepository(db),
		catalogSvc,
	)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	rewardSvc := reward.NewService(sqlxrepos.NewRewardRepository(db), progressSvc)
	articleSvc := article.NewService(sqlxrepos.NewArticleRepository(db))
	notificationSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db))

	// an integrity error signals shutdown too
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:            core.Conf.Server.Host + ":" + core.Conf.Server.Port,
			UserSvc:         usrSvc,
			CatalogSvc:      catalogSvc,
			ProgressSvc:     progressSvc,
			RewardSvc:       rewardSvc,
			ArticleSvc:      articleSvc,
			NotificationSvc: notificationSvc,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			Shutdown:        func() { shutdown <- syscall.SIGTERM },
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("api: listening on " + core.Conf.Server.Host + ":" + core.Conf.Server.Port)
		serverErrors <- app.Start()
	}()

	select {
	case err = <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "server error")
		}
	case sig := <-shutdown:
		logger.Info("api: shutting down on " + sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = app.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
