package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"threatwatch/internal/domain"
)

type FeedFetcher interface {
	Fetch(ctx context.Context, url, feedType string) (*domain.FeedDocument, error)
}

type ContentExtractor interface {
	ArticleContent(ctx context.Context, url string) (string, []string)
}

type ArticleStore interface {
	Sources(ctx context.Context) ([]domain.Source, error)
	UpdateSourceStatus(ctx context.Context, sourceID int64, success bool) error
	AddArticle(ctx context.Context, article *domain.Article) (bool, error)
	SearchArticles(ctx context.Context, query string, days, limit int) ([]domain.ArticleView, error)
	ArticleKeywords(ctx context.Context, days int) ([]domain.KeywordCount, error)
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article, sourceName string) error
	Close() error
}
