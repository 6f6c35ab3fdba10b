package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/article"
)

type articleApi struct {
	svc *article.Service
}

func registerArticleAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := articleApi{svc: opts.ArticleSvc}

	ag := g.Group("/articles", jwt)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
}

// Handlers

func (api *articleApi) query(ctx echo.Context) error {
	arts, err := api.svc.QueryPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying articles")
	}
	if arts == nil {
		arts = []article.Article{}
	}
	return ctx.JSON(http.StatusOK, arts)
}

func (api *articleApi) retrieve(ctx echo.Context) error {
	art, err := api.svc.GetPublished(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting article")
	}
	return ctx.JSON(http.StatusOK, art)
}
