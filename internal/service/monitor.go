package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"threatwatch/internal/domain"
	"threatwatch/internal/feed"
)

// Monitor drives one full update cycle: it fans out one task per
// source, bounded by MaxWorkers, and merges per-task outcomes into run
// statistics. One failing source never terminates the run.
type Monitor struct {
	fetcher    FeedFetcher
	extractor  ContentExtractor
	store      ArticleStore
	publisher  Publisher // may be nil
	logger     *slog.Logger
	maxWorkers int
}

func NewMonitor(
	fetcher FeedFetcher,
	extractor ContentExtractor,
	store ArticleStore,
	publisher Publisher,
	logger *slog.Logger,
	maxWorkers int,
) *Monitor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Monitor{
		fetcher:    fetcher,
		extractor:  extractor,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

type feedResult struct {
	sourceName  string
	newArticles int
	err         error
}

// UpdateFeeds processes every known source concurrently and stores the
// articles published within the last daysBack days. FeedsProcessed
// counts only sources whose task completed without error; failed tasks
// count toward Errors instead.
func (m *Monitor) UpdateFeeds(ctx context.Context, daysBack int) (*domain.UpdateStats, error) {
	start := time.Now()

	sources, err := m.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)

	results := make(chan feedResult, len(sources))
	sem := make(chan struct{}, m.maxWorkers)
	var wg sync.WaitGroup

	for _, source := range sources {
		wg.Add(1)
		go func(source domain.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			count, err := m.processFeed(ctx, source, cutoff)
			results <- feedResult{sourceName: source.Name, newArticles: count, err: err}
		}(source)
	}

	wg.Wait()
	close(results)

	stats := &domain.UpdateStats{}
	for result := range results {
		if result.err != nil {
			stats.Errors++
			m.logger.Error("feed processing failed",
				"source", result.sourceName,
				"error", result.err,
			)
			continue
		}
		stats.FeedsProcessed++
		stats.NewArticles += result.newArticles
		m.logger.Info("processed feed",
			"source", result.sourceName,
			"new_articles", result.newArticles,
		)
	}
	stats.Duration = time.Since(start)

	m.logger.Info("update complete",
		"feeds_processed", stats.FeedsProcessed,
		"new_articles", stats.NewArticles,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// processFeed fetches one source's feed and ingests every entry inside
// the recency window. The returned count includes only articles that
// were actually inserted, not duplicates.
func (m *Monitor) processFeed(ctx context.Context, source domain.Source, cutoff time.Time) (int, error) {
	doc, err := m.fetcher.Fetch(ctx, source.URL, source.Type)
	if err != nil {
		if statusErr := m.store.UpdateSourceStatus(ctx, source.ID, false); statusErr != nil {
			m.logger.Error("record source failure", "source", source.Name, "error", statusErr)
		}
		return 0, err
	}

	if err := m.store.UpdateSourceStatus(ctx, source.ID, true); err != nil {
		return 0, err
	}

	m.logger.Debug("feed has entries", "source", source.Name, "entries", len(doc.Entries))

	newArticles := 0
	for _, entry := range doc.Entries {
		published := feed.PublishedDate(entry)
		if published.Before(cutoff) {
			continue
		}

		body, keywords := m.extractor.ArticleContent(ctx, entry.Link)

		article := &domain.Article{
			SourceID:      source.ID,
			Title:         entry.Title,
			URL:           entry.Link,
			PublishedDate: published,
			Summary:       feed.Summary(entry),
			FullContent:   body,
			Keywords:      domain.JoinKeywords(keywords),
		}

		added, err := m.store.AddArticle(ctx, article)
		if err != nil {
			return newArticles, err
		}
		if !added {
			continue
		}
		newArticles++

		if m.publisher != nil {
			if err := m.publisher.Publish(ctx, article, source.Name); err != nil {
				m.logger.Error("publish article", "url", article.URL, "error", err)
			}
		}
	}

	return newArticles, nil
}

// SearchArticles delegates to the store.
func (m *Monitor) SearchArticles(ctx context.Context, query string, days, limit int) ([]domain.ArticleView, error) {
	return m.store.SearchArticles(ctx, query, days, limit)
}

// TrendingKeywords returns the most frequent keywords across articles
// from the last days days, capped at limit.
func (m *Monitor) TrendingKeywords(ctx context.Context, days, limit int) ([]domain.KeywordCount, error) {
	keywords, err := m.store.ArticleKeywords(ctx, days)
	if err != nil {
		return nil, err
	}
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords, nil
}
