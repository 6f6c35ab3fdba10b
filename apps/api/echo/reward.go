package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/reward"
)

type rewardApi struct {
	svc *reward.Service
}

func registerRewardAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := rewardApi{svc: opts.RewardSvc}

	rg := g.Group("/rewards", jwt)
	rg.GET("", api.query)
	rg.POST("/:id/redeem", api.redeem)

	g.GET("/me/redemptions", api.myRedemptions, jwt)
}

// Handlers

func (api *rewardApi) query(ctx echo.Context) error {
	rewards, err := api.svc.QueryActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rewards")
	}
	if rewards == nil {
		rewards = []reward.Reward{}
	}
	return ctx.JSON(http.StatusOK, rewards)
}

func (api *rewardApi) redeem(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	red, err := api.svc.Redeem(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "redeeming reward")
	}
	return ctx.JSON(http.StatusCreated, red)
}

func (api *rewardApi) myRedemptions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reds, err := api.svc.QueryRedemptions(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying redemptions")
	}
	if reds == nil {
		reds = []reward.Redemption{}
	}
	return ctx.JSON(http.StatusOK, reds)
}
