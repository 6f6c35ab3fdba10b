package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/progression"
)

// Lesson types
const (
	LessonTypeVideo = "video"
	LessonTypeQuiz  = "quiz"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Unit struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Lesson struct {
	ID           string    `json:"id"`
	UnitID       string    `json:"unit_id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	VideoURL     string    `json:"video_url,omitempty"`
	TranscriptEN string    `json:"transcript_en,omitempty"`
	TranscriptHI string    `json:"transcript_hi,omitempty"`
	SortOrder    int       `json:"sort_order"`
	XPReward     int       `json:"xp_reward"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Quiz belongs to exactly one lesson and carries its ordered questions.
type Quiz struct {
	ID        string                 `json:"id"`
	LessonID  string                 `json:"lesson_id"`
	Questions []progression.Question `json:"questions"`
	CreatedAt time.Time              `json:"created_at"` // UTC
}

// CourseDetail is a course joined with its ordered units and lessons.
type CourseDetail struct {
	Course
	Units []UnitDetail `json:"units"`
}

type UnitDetail struct {
	Unit
	Lessons []Lesson `json:"lessons"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
	IsPublished bool   `json:"is_published"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Category = core.CleanString(nc.Category)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   *int   `json:"sort_order" validate:"omitempty,gte=0"`
	IsPublished *bool  `json:"is_published"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Category = core.CleanString(uc.Category)
	return validate.Struct(uc)
}

// NewUnit contains information needed to create a new Unit.
type NewUnit struct {
	CourseID  string `json:"course_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (nu *NewUnit) Validate(validate *validator.Validate) error {
	nu.Title = core.CleanString(nu.Title)
	return validate.Struct(nu)
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	UnitID       string `json:"unit_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Type         string `json:"type" validate:"omitempty,oneof=video quiz"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	TranscriptEN string `json:"transcript_en"`
	TranscriptHI string `json:"transcript_hi"`
	SortOrder    int    `json:"sort_order" validate:"gte=0"`
	XPReward     int    `json:"xp_reward" validate:"gte=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	if nl.Type == "" {
		nl.Type = LessonTypeVideo
	}
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify an existing Lesson.
type UpdateLesson struct {
	Title        string `json:"title"`
	Type         string `json:"type" validate:"omitempty,oneof=video quiz"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	TranscriptEN string `json:"transcript_en"`
	TranscriptHI string `json:"transcript_hi"`
	SortOrder    *int   `json:"sort_order" validate:"omitempty,gte=0"`
	XPReward     *int   `json:"xp_reward" validate:"omitempty,gte=0"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Title = core.CleanString(ul.Title)
	return validate.Struct(ul)
}

// NewQuiz contains information needed to attach a quiz to a lesson.
// Each question needs at least two options and a correct index within range;
// the range check is a struct-level validation (see validators.go).
type NewQuiz struct {
	LessonID  string                 `json:"lesson_id" validate:"required"`
	Questions []progression.Question `json:"questions" validate:"required,min=1"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	return validate.Struct(nq)
}
