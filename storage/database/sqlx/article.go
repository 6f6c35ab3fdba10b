package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/article"
)

type articleRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Category    string         `db:"category"`
	Content     string         `db:"content"`
	Tags        pq.StringArray `db:"tags"`
	ImageURL    string         `db:"image_url"`
	IsPublished bool           `db:"is_published"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r articleRow) model() article.Article {
	return article.Article{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Content:     r.Content,
		Tags:        r.Tags,
		ImageURL:    r.ImageURL,
		IsPublished: r.IsPublished,
		CreatedAt:   r.CreatedAt,
	}
}

type articleRepository struct {
	db *sqlx.DB
}

var _ article.Repository = (*articleRepository)(nil) // interface compliance check

func NewArticleRepository(db *sqlx.DB) article.Repository {
	return &articleRepository{db: db}
}

func (repo *articleRepository) QueryArticles(ctx context.Context, publishedOnly bool) ([]article.Article, error) {
	query := `SELECT * FROM article`
	if publishedOnly {
		query += ` WHERE is_published`
	}
	query += ` ORDER BY created_at DESC`

	var rows []articleRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying articles")
	}
	arts := make([]article.Article, 0, len(rows))
	for _, row := range rows {
		arts = append(arts, row.model())
	}
	return arts, nil
}

func (repo *articleRepository) GetArticleByID(ctx context.Context, id string) (article.Article, error) {
	var row articleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM article WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, errors.Wrap(err, "getting article")
	}
	return row.model(), nil
}

func (repo *articleRepository) CreateArticle(ctx context.Context, art article.Article) (article.Article, error) {
	var row articleRow
	query := `
INSERT INTO article (title, category, content, tags, image_url, is_published, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		art.Title, art.Category, art.Content, pq.Array(art.Tags), art.ImageURL,
		art.IsPublished, art.CreatedAt,
	)
	if err != nil {
		return article.Article{}, errors.Wrap(err, "creating article")
	}
	return row.model(), nil
}

func (repo *articleRepository) UpdateArticle(ctx context.Context, art article.Article) (article.Article, error) {
	var row articleRow
	query := `
UPDATE article
SET title = $2, category = $3, content = $4, tags = $5, image_url = $6, is_published = $7
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		art.ID, art.Title, art.Category, art.Content, pq.Array(art.Tags), art.ImageURL,
		art.IsPublished,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, errors.Wrap(err, "updating article")
	}
	return row.model(), nil
}

func (repo *articleRepository) DeleteArticle(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM article WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting article")
	}
	return nil
}
