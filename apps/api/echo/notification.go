package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := notificationApi{svc: opts.NotificationSvc}

	g.GET("/notifications", api.query, jwt)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	ntfs, err := api.svc.QuerySent(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if ntfs == nil {
		ntfs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ntfs)
}
