package article

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("article not found")

type (
	Repository interface {
		QueryArticles(ctx context.Context, publishedOnly bool) ([]Article, error)
		GetArticleByID(ctx context.Context, id string) (Article, error)
		CreateArticle(ctx context.Context, art Article) (Article, error)
		UpdateArticle(ctx context.Context, art Article) (Article, error)
		DeleteArticle(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryPublished returns the articles visible to learners.
func (svc *Service) QueryPublished(ctx context.Context) ([]Article, error) {
	return svc.repo.QueryArticles(ctx, true)
}

// QueryAll returns every article. Admin use.
func (svc *Service) QueryAll(ctx context.Context) ([]Article, error) {
	return svc.repo.QueryArticles(ctx, false)
}

// GetPublished returns a published article; drafts are invisible to learners.
func (svc *Service) GetPublished(ctx context.Context, id string) (Article, error) {
	art, err := svc.repo.GetArticleByID(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if !art.IsPublished {
		return Article{}, ErrNotFound
	}
	return art, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Article, error) {
	return svc.repo.GetArticleByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, na NewArticle) (Article, error) {
	art := Article{
		Title:       na.Title,
		Category:    na.Category,
		Content:     na.Content,
		Tags:        na.Tags,
		ImageURL:    na.ImageURL,
		IsPublished: na.IsPublished,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateArticle(ctx, art)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateArticle) (Article, error) {
	art, err := svc.repo.GetArticleByID(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if ua.Title != "" {
		art.Title = ua.Title
	}
	if ua.Category != "" {
		art.Category = ua.Category
	}
	if ua.Content != "" {
		art.Content = ua.Content
	}
	if ua.Tags != nil {
		art.Tags = ua.Tags
	}
	if ua.ImageURL != "" {
		art.ImageURL = ua.ImageURL
	}
	if ua.IsPublished != nil {
		art.IsPublished = *ua.IsPublished
	}
	return svc.repo.UpdateArticle(ctx, art)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteArticle(ctx, id)
}
