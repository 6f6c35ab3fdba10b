package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finquest/finquest/core/article"
)

type articleRepository struct {
	db *articleTable
}

var _ article.Repository = (*articleRepository)(nil) // interface compliance check

func NewArticleRepository(db *DB) article.Repository {
	return &articleRepository{db: db.article}
}

func (repo *articleRepository) QueryArticles(ctx context.Context, publishedOnly bool) ([]article.Article, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	arts := make([]article.Article, 0, len(repo.db.table))
	for _, art := range repo.db.table {
		if publishedOnly && !art.IsPublished {
			continue
		}
		arts = append(arts, *art)
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].CreatedAt.After(arts[j].CreatedAt) })
	return arts, nil
}

func (repo *articleRepository) GetArticleByID(ctx context.Context, id string) (article.Article, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if art, ok := repo.db.table[id]; ok {
		return *art, nil
	}
	return article.Article{}, article.ErrNotFound
}

func (repo *articleRepository) CreateArticle(ctx context.Context, art article.Article) (article.Article, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	art.ID = uuid.NewString()
	repo.db.table[art.ID] = &art
	return art, nil
}

func (repo *articleRepository) UpdateArticle(ctx context.Context, art article.Article) (article.Article, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[art.ID]
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	art.CreatedAt = orig.CreatedAt
	repo.db.table[art.ID] = &art
	return art, nil
}

func (repo *articleRepository) DeleteArticle(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
