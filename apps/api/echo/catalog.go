package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progress"
)

type catalogApi struct {
	svc         *catalog.Service
	progressSvc *progress.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := catalogApi{
		svc:         opts.CatalogSvc,
		progressSvc: opts.ProgressSvc,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)

	g.GET("/units/:id/lessons", api.unitLessons, jwt)
	g.GET("/lessons/:id", api.lessonDetail, jwt)
}

// QuestionView is a quiz question stripped of its correct answer.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type QuizView struct {
	ID        string         `json:"id"`
	LessonID  string         `json:"lesson_id"`
	Questions []QuestionView `json:"questions"`
}

type LessonDetailResponse struct {
	catalog.Lesson
	Quiz *QuizView `json:"quiz,omitempty"`
}

func newQuizView(quiz catalog.Quiz) *QuizView {
	view := &QuizView{
		ID:        quiz.ID,
		LessonID:  quiz.LessonID,
		Questions: make([]QuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, QuestionView{Prompt: q.Prompt, Options: q.Options})
	}
	return view
}

// Handlers

func (api *catalogApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) retrieve(ctx echo.Context) error {
	detail, err := api.svc.GetCourseDetail(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting course detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

// unitLessons returns the unit's ordered lessons with the caller's lock
// state and progress attached.
func (api *catalogApi) unitLessons(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	states, err := api.progressSvc.UnitState(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting unit state")
	}
	return ctx.JSON(http.StatusOK, states)
}

// lessonDetail returns the lesson with its quiz, correct answers withheld.
func (api *catalogApi) lessonDetail(ctx echo.Context) error {
	lesson, err := api.svc.GetLesson(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}

	resp := LessonDetailResponse{Lesson: lesson}
	quiz, err := api.svc.GetQuiz(ctx.Request().Context(), lesson.ID)
	if err == nil {
		resp.Quiz = newQuizView(quiz)
	} else if errors.Cause(err) != catalog.ErrNotFound {
		return errors.Wrap(err, "getting quiz")
	}
	return ctx.JSON(http.StatusOK, resp)
}
