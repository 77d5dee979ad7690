// Package feed fetches and parses RSS/Atom feed documents.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"threatwatch/internal/domain"
	"threatwatch/internal/ratelimit"
	"threatwatch/internal/useragent"
)

// Error is a per-source feed fault: an HTTP error status, a network
// failure, or a feed with zero entries. The coordinator treats all of
// these identically as a non-fatal source failure.
type Error struct {
	URL    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("feed %s: %s", e.URL, e.Reason)
}

// Config holds fetcher configuration.
type Config struct {
	Timeout time.Duration
}

// Fetcher retrieves feed documents over HTTP, applying per-host rate
// limiting and User-Agent rotation on every request.
type Fetcher struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	parser     *gofeed.Parser
	logger     *slog.Logger
}

func NewFetcher(cfg Config, limiter *ratelimit.Limiter, logger *slog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		parser:     gofeed.NewParser(),
		logger:     logger,
	}
}

// Fetch retrieves and parses the feed at url. feedType ("rss" or
// "atom") comes from source configuration; the parser accepts either.
func (f *Fetcher) Fetch(ctx context.Context, url, feedType string) (*domain.FeedDocument, error) {
	f.limiter.Wait(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	useragent.SetHeaders(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{URL: url, Reason: fmt.Sprintf("returned HTTP %d", resp.StatusCode)}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Reason: fmt.Sprintf("parse %s feed: %v", feedType, err)}
	}
	if len(parsed.Items) == 0 {
		return nil, &Error{URL: url, Reason: "returned no entries"}
	}

	doc := &domain.FeedDocument{
		Title:   parsed.Title,
		Entries: make([]domain.FeedEntry, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		doc.Entries = append(doc.Entries, toEntry(item))
	}

	f.logger.Debug("fetched feed", "url", url, "entries", len(doc.Entries))

	return doc, nil
}

func toEntry(item *gofeed.Item) domain.FeedEntry {
	// gofeed normalizes both RSS <description> and Atom <summary> into
	// Item.Description; a raw description element that survived
	// normalization shows up under Custom.
	entry := domain.FeedEntry{
		Title:     item.Title,
		Link:      item.Link,
		Published: item.PublishedParsed,
		Updated:   item.UpdatedParsed,
		Summary:   item.Description,
		Content:   item.Content,
	}
	if raw, ok := item.Custom["description"]; ok {
		entry.Description = raw
	}

	// Some feeds carry date strings the parser could not normalize.
	if entry.Published == nil && item.Published != "" {
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			entry.Published = &t
		}
	}
	if entry.Updated == nil && item.Updated != "" {
		if t, err := dateparse.ParseAny(item.Updated); err == nil {
			entry.Updated = &t
		}
	}
	if raw, ok := item.Custom["created"]; ok {
		if t, err := dateparse.ParseAny(raw); err == nil {
			entry.Created = &t
		}
	}

	return entry
}
