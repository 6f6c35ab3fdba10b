package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/progress"
)

type progressApi struct {
	svc *progress.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := progressApi{svc: opts.ProgressSvc}

	lg := g.Group("/lessons", jwt)
	lg.POST("/:id/video-complete", api.completeVideo)
	lg.POST("/:id/quiz", api.submitQuiz)

	mg := g.Group("/me", jwt)
	mg.GET("", api.me)
	mg.GET("/progress", api.myProgress)

	g.GET("/leaderboard", api.leaderboard, jwt)
}

type QuizSubmission struct {
	// Answers maps question index to selected option index.
	Answers map[int]int `json:"answers"`
}

// Handlers

func (api *progressApi) completeVideo(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.CompleteVideo(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if progress.IsPartialWrite(err) {
			// progress is committed; the client may safely retry
			return echo.NewHTTPError(http.StatusInternalServerError, "profile update failed, retry")
		}
		return errors.Wrap(err, "completing video")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) submitQuiz(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	res, err := api.svc.SubmitQuiz(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Answers)
	if err != nil {
		if progress.IsPartialWrite(err) {
			return echo.NewHTTPError(http.StatusInternalServerError, "profile update failed, retry")
		}
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	overview, err := api.svc.GetOverview(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *progressApi) leaderboard(ctx echo.Context) error {
	leaders, err := api.svc.Leaderboard(ctx.Request().Context(), progress.DefaultLeaderboardSize)
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}
	if leaders == nil {
		leaders = []progress.Profile{}
	}
	return ctx.JSON(http.StatusOK, leaders)
}

func (api *progressApi) myProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	records, err := api.svc.QueryUserProgress(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if records == nil {
		records = []progress.Progress{}
	}
	return ctx.JSON(http.StatusOK, records)
}
