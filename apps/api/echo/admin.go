package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/article"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/notification"
	"github.com/finquest/finquest/core/reward"
)

// adminApi carries the staff-only content management endpoints.
type adminApi struct {
	catalogSvc      *catalog.Service
	rewardSvc       *reward.Service
	articleSvc      *article.Service
	notificationSvc *notification.Service
	validate        *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{
		catalogSvc:      opts.CatalogSvc,
		rewardSvc:       opts.RewardSvc,
		articleSvc:      opts.ArticleSvc,
		notificationSvc: opts.NotificationSvc,
		validate:        opts.Validate,
	}

	ag := g.Group("/admin", jwt, adminMiddleware())

	cg := ag.Group("/courses")
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.DELETE("/:id", api.deleteCourse)

	ug := ag.Group("/units")
	ug.POST("", api.createUnit)
	ug.DELETE("/:id", api.deleteUnit)

	lg := ag.Group("/lessons")
	lg.POST("", api.createLesson)
	lg.PUT("/:id", api.updateLesson)
	lg.DELETE("/:id", api.deleteLesson)
	lg.PUT("/:id/quiz", api.setQuiz)
	lg.DELETE("/:id/quiz", api.deleteQuiz)

	rg := ag.Group("/rewards")
	rg.GET("", api.queryRewards)
	rg.POST("", api.createReward)
	rg.PUT("/:id", api.updateReward)
	rg.DELETE("/:id", api.deleteReward)

	dg := ag.Group("/redemptions")
	dg.GET("", api.queryRedemptions)
	dg.PUT("/:id/status", api.setRedemptionStatus)

	arg := ag.Group("/articles")
	arg.GET("", api.queryArticles)
	arg.POST("", api.createArticle)
	arg.PUT("/:id", api.updateArticle)
	arg.DELETE("/:id", api.deleteArticle)

	ng := ag.Group("/notifications")
	ng.GET("", api.queryNotifications)
	ng.POST("", api.createNotification)
	ng.POST("/:id/send", api.sendNotification)
	ng.DELETE("/:id", api.deleteNotification)
}

// Course handlers

func (api *adminApi) queryCourses(ctx echo.Context) error {
	courses, err := api.catalogSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	var data catalog.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.catalogSvc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *adminApi) updateCourse(ctx echo.Context) error {
	var data catalog.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.catalogSvc.UpdateCourse(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *adminApi) deleteCourse(ctx echo.Context) error {
	if err := api.catalogSvc.DeleteCourse(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Unit handlers

func (api *adminApi) createUnit(ctx echo.Context) error {
	var data catalog.NewUnit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUnit")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	unit, err := api.catalogSvc.CreateUnit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating unit")
	}
	return ctx.JSON(http.StatusCreated, unit)
}

func (api *adminApi) deleteUnit(ctx echo.Context) error {
	if err := api.catalogSvc.DeleteUnit(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting unit")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lesson handlers

func (api *adminApi) createLesson(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.catalogSvc.CreateLesson(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *adminApi) updateLesson(ctx echo.Context) error {
	var data catalog.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.catalogSvc.UpdateLesson(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *adminApi) deleteLesson(ctx echo.Context) error {
	if err := api.catalogSvc.DeleteLesson(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) setQuiz(ctx echo.Context) error {
	var data catalog.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	data.LessonID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	quiz, err := api.catalogSvc.SetQuiz(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "setting quiz")
	}
	return ctx.JSON(http.StatusOK, quiz)
}

func (api *adminApi) deleteQuiz(ctx echo.Context) error {
	if err := api.catalogSvc.DeleteQuiz(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Reward handlers

func (api *adminApi) queryRewards(ctx echo.Context) error {
	rewards, err := api.rewardSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rewards")
	}
	if rewards == nil {
		rewards = []reward.Reward{}
	}
	return ctx.JSON(http.StatusOK, rewards)
}

func (api *adminApi) createReward(ctx echo.Context) error {
	var data reward.NewReward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReward")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rwd, err := api.rewardSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating reward")
	}
	return ctx.JSON(http.StatusCreated, rwd)
}

func (api *adminApi) updateReward(ctx echo.Context) error {
	var data reward.UpdateReward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReward")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rwd, err := api.rewardSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating reward")
	}
	return ctx.JSON(http.StatusOK, rwd)
}

func (api *adminApi) deleteReward(ctx echo.Context) error {
	if err := api.rewardSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting reward")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Redemption handlers

func (api *adminApi) queryRedemptions(ctx echo.Context) error {
	reds, err := api.rewardSvc.QueryRedemptions(ctx.Request().Context(), ctx.QueryParam("user_id"))
	if err != nil {
		return errors.Wrap(err, "querying redemptions")
	}
	if reds == nil {
		reds = []reward.Redemption{}
	}
	return ctx.JSON(http.StatusOK, reds)
}

type RedemptionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (rs *RedemptionStatusRequest) Validate(validate *validator.Validate) error {
	rs.Status = core.CleanString(rs.Status, true /* lower */)
	return validate.Struct(rs)
}

func (api *adminApi) setRedemptionStatus(ctx echo.Context) error {
	var data RedemptionStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RedemptionStatusRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	red, err := api.rewardSvc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "setting redemption status")
	}
	return ctx.JSON(http.StatusOK, red)
}

// Article handlers

func (api *adminApi) queryArticles(ctx echo.Context) error {
	arts, err := api.articleSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying articles")
	}
	if arts == nil {
		arts = []article.Article{}
	}
	return ctx.JSON(http.StatusOK, arts)
}

func (api *adminApi) createArticle(ctx echo.Context) error {
	var data article.NewArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	art, err := api.articleSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating article")
	}
	return ctx.JSON(http.StatusCreated, art)
}

func (api *adminApi) updateArticle(ctx echo.Context) error {
	var data article.UpdateArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	art, err := api.articleSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating article")
	}
	return ctx.JSON(http.StatusOK, art)
}

func (api *adminApi) deleteArticle(ctx echo.Context) error {
	if err := api.articleSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting article")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Notification handlers

func (api *adminApi) queryNotifications(ctx echo.Context) error {
	ntfs, err := api.notificationSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if ntfs == nil {
		ntfs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, ntfs)
}

func (api *adminApi) createNotification(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ntf, err := api.notificationSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, ntf)
}

func (api *adminApi) sendNotification(ctx echo.Context) error {
	ntf, err := api.notificationSvc.MarkSent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "sending notification")
	}
	return ctx.JSON(http.StatusOK, ntf)
}

func (api *adminApi) deleteNotification(ctx echo.Context) error {
	if err := api.notificationSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}
