package article

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/finquest/finquest/core"
)

type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewArticle contains information needed to create a new Article.
type NewArticle struct {
	Title       string   `json:"title" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	IsPublished bool     `json:"is_published"`
}

func (na *NewArticle) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Category = core.CleanString(na.Category)
	return validate.Struct(na)
}

// UpdateArticle defines what information may be provided to modify an existing Article.
type UpdateArticle struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	IsPublished *bool    `json:"is_published"`
}

func (ua *UpdateArticle) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Category = core.CleanString(ua.Category)
	return validate.Struct(ua)
}
