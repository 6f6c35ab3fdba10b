package catalog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
)

type (
	Repository interface {
		QueryCourses(ctx context.Context, publishedOnly bool) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		CreateCourse(ctx context.Context, course Course) (Course, error)
		UpdateCourse(ctx context.Context, course Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		QueryUnitsByCourse(ctx context.Context, courseID string) ([]Unit, error)
		GetUnitByID(ctx context.Context, id string) (Unit, error)
		CreateUnit(ctx context.Context, unit Unit) (Unit, error)
		DeleteUnit(ctx context.Context, id string) error

		// QueryLessonsByUnit returns the unit's lessons ordered by SortOrder ascending.
		QueryLessonsByUnit(ctx context.Context, unitID string) ([]Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
		UpdateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error

		GetQuizByLessonID(ctx context.Context, lessonID string) (Quiz, error)
		UpsertQuiz(ctx context.Context, quiz Quiz) (Quiz, error)
		DeleteQuiz(ctx context.Context, lessonID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryPublished returns the published courses ordered by sort order.
func (svc *Service) QueryPublished(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, true)
}

// QueryAll returns every course, published or not. Admin use.
func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, false)
}

// GetCourseDetail returns a course with its units and each unit's ordered lessons.
func (svc *Service) GetCourseDetail(ctx context.Context, id string) (CourseDetail, error) {
	course, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return CourseDetail{}, err
	}
	units, err := svc.repo.QueryUnitsByCourse(ctx, id)
	if err != nil {
		return CourseDetail{}, err
	}

	detail := CourseDetail{Course: course, Units: make([]UnitDetail, 0, len(units))}
	for _, unit := range units {
		lessons, err := svc.repo.QueryLessonsByUnit(ctx, unit.ID)
		if err != nil {
			return CourseDetail{}, err
		}
		if lessons == nil {
			lessons = []Lesson{}
		}
		detail.Units = append(detail.Units, UnitDetail{Unit: unit, Lessons: lessons})
	}
	return detail, nil
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *Service) GetUnit(ctx context.Context, id string) (Unit, error) {
	return svc.repo.GetUnitByID(ctx, id)
}

// ListLessons returns the unit's lessons ordered by sort order.
func (svc *Service) ListLessons(ctx context.Context, unitID string) ([]Lesson, error) {
	return svc.repo.QueryLessonsByUnit(ctx, unitID)
}

// GetQuiz returns the quiz attached to a lesson, or ErrNotFound when the
// lesson has none.
func (svc *Service) GetQuiz(ctx context.Context, lessonID string) (Quiz, error) {
	return svc.repo.GetQuizByLessonID(ctx, lessonID)
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	course := Course{
		Title:       nc.Title,
		Category:    nc.Category,
		Description: nc.Description,
		Icon:        nc.Icon,
		Color:       nc.Color,
		SortOrder:   nc.SortOrder,
		IsPublished: nc.IsPublished,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, course)
}

func (svc *Service) UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	course, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != "" {
		course.Title = uc.Title
	}
	if uc.Category != "" {
		course.Category = uc.Category
	}
	if uc.Description != "" {
		course.Description = uc.Description
	}
	if uc.Icon != "" {
		course.Icon = uc.Icon
	}
	if uc.Color != "" {
		course.Color = uc.Color
	}
	if uc.SortOrder != nil {
		course.SortOrder = *uc.SortOrder
	}
	if uc.IsPublished != nil {
		course.IsPublished = *uc.IsPublished
	}
	return svc.repo.UpdateCourse(ctx, course)
}

func (svc *Service) DeleteCourse(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *Service) CreateUnit(ctx context.Context, nu NewUnit) (Unit, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nu.CourseID); err != nil {
		return Unit{}, err
	}
	unit := Unit{
		CourseID:  nu.CourseID,
		Title:     nu.Title,
		SortOrder: nu.SortOrder,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateUnit(ctx, unit)
}

func (svc *Service) DeleteUnit(ctx context.Context, id string) error {
	return svc.repo.DeleteUnit(ctx, id)
}

func (svc *Service) CreateLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if _, err := svc.repo.GetUnitByID(ctx, nl.UnitID); err != nil {
		return Lesson{}, err
	}
	lesson := Lesson{
		UnitID:       nl.UnitID,
		Title:        nl.Title,
		Type:         nl.Type,
		VideoURL:     nl.VideoURL,
		TranscriptEN: nl.TranscriptEN,
		TranscriptHI: nl.TranscriptHI,
		SortOrder:    nl.SortOrder,
		XPReward:     nl.XPReward,
		CreatedAt:    time.Now().UTC(),
	}
	return svc.repo.CreateLesson(ctx, lesson)
}

func (svc *Service) UpdateLesson(ctx context.Context, id string, ul UpdateLesson) (Lesson, error) {
	lesson, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.Title != "" {
		lesson.Title = ul.Title
	}
	if ul.Type != "" {
		lesson.Type = ul.Type
	}
	if ul.VideoURL != "" {
		lesson.VideoURL = ul.VideoURL
	}
	if ul.TranscriptEN != "" {
		lesson.TranscriptEN = ul.TranscriptEN
	}
	if ul.TranscriptHI != "" {
		lesson.TranscriptHI = ul.TranscriptHI
	}
	if ul.SortOrder != nil {
		lesson.SortOrder = *ul.SortOrder
	}
	if ul.XPReward != nil {
		lesson.XPReward = *ul.XPReward
	}
	return svc.repo.UpdateLesson(ctx, lesson)
}

func (svc *Service) DeleteLesson(ctx context.Context, id string) error {
	return svc.repo.DeleteLesson(ctx, id)
}

// SetQuiz attaches a quiz to a lesson, replacing any existing one.
func (svc *Service) SetQuiz(ctx context.Context, nq NewQuiz) (Quiz, error) {
	if _, err := svc.repo.GetLessonByID(ctx, nq.LessonID); err != nil {
		return Quiz{}, err
	}
	quiz := Quiz{
		LessonID:  nq.LessonID,
		Questions: nq.Questions,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.UpsertQuiz(ctx, quiz)
}

func (svc *Service) DeleteQuiz(ctx context.Context, lessonID string) error {
	return svc.repo.DeleteQuiz(ctx, lessonID)
}
