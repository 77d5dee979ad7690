// Package sqlite persists sources and articles in a single SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"threatwatch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'rss',
	last_updated TIMESTAMP,
	error_count INTEGER NOT NULL DEFAULT 0,
	priority INTEGER NOT NULL DEFAULT 5
);

CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY,
	source_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	published_date TIMESTAMP NOT NULL,
	retrieved_date TIMESTAMP NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	full_content TEXT NOT NULL DEFAULT '',
	keywords TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (source_id) REFERENCES sources (id)
);

CREATE INDEX IF NOT EXISTS idx_articles_pubdate ON articles(published_date);
CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source_id);
`

// Open connects to the SQLite database at path, creating the file if
// absent. WAL mode and a generous busy timeout keep concurrent writers
// from corrupting the file; foreign keys are enforced.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)",
		path,
	)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Store handles all database operations for sources and articles.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Init creates the schema if missing and seeds the given feeds as
// sources, inserting by name only when absent. Safe to run on every
// startup.
func (s *Store) Init(ctx context.Context, feeds []domain.FeedConfig) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin init: %w", err)
	}

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create schema: %w", err)
	}

	for _, feed := range feeds {
		feedType := feed.Type
		if feedType == "" {
			feedType = "rss"
		}
		priority := feed.Priority
		if priority == 0 {
			priority = 5
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sources (name, url, type, priority) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			feed.Name, feed.URL, feedType, priority,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed source %q: %w", feed.Name, err)
		}
	}

	return tx.Commit()
}

// Sources returns all configured sources, highest priority first.
func (s *Store) Sources(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	err := s.db.SelectContext(ctx, &sources,
		`SELECT id, name, url, type, last_updated, error_count, priority
		 FROM sources
		 ORDER BY priority DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}
	return sources, nil
}

// UpdateSourceStatus records the outcome of a processing attempt. On
// success the last-updated stamp advances and the error count resets;
// on failure only the error count grows.
func (s *Store) UpdateSourceStatus(ctx context.Context, sourceID int64, success bool) error {
	var err error
	if success {
		_, err = s.db.ExecContext(ctx,
			"UPDATE sources SET last_updated = ?, error_count = 0 WHERE id = ?",
			time.Now(), sourceID,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"UPDATE sources SET error_count = error_count + 1 WHERE id = ?",
			sourceID,
		)
	}
	if err != nil {
		return fmt.Errorf("update source %d status: %w", sourceID, err)
	}
	return nil
}

// AddArticle inserts the article unless its URL is already present.
// Returns false without error for duplicates. The existence check and
// insert are a single statement, so concurrent callers cannot race a
// duplicate row in.
func (s *Store) AddArticle(ctx context.Context, article *domain.Article) (bool, error) {
	retrieved := article.RetrievedDate
	if retrieved.IsZero() {
		retrieved = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles
			(source_id, title, url, published_date, retrieved_date, summary, full_content, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		article.SourceID,
		article.Title,
		article.URL,
		article.PublishedDate,
		retrieved,
		article.Summary,
		article.FullContent,
		article.Keywords,
	)
	if err != nil {
		return false, fmt.Errorf("insert article %s: %w", article.URL, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SearchArticles returns articles published within the last days days,
// newest first, capped at limit. A non-empty query must match title,
// summary, full content, or keywords (case-insensitive substring, any
// field).
func (s *Store) SearchArticles(ctx context.Context, query string, days, limit int) ([]domain.ArticleView, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	sql := `
		SELECT a.id, a.title, a.url, a.published_date, a.summary, a.keywords, s.name AS source_name
		FROM articles a
		JOIN sources s ON a.source_id = s.id
		WHERE a.published_date > ?`
	args := []any{cutoff}

	if query = strings.TrimSpace(query); query != "" {
		sql += `
		  AND (a.title LIKE ? OR a.summary LIKE ? OR a.full_content LIKE ? OR a.keywords LIKE ?)`
		term := "%" + query + "%"
		args = append(args, term, term, term, term)
	}

	sql += `
		ORDER BY a.published_date DESC
		LIMIT ?`
	args = append(args, limit)

	var articles []domain.ArticleView
	if err := s.db.SelectContext(ctx, &articles, sql, args...); err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return articles, nil
}

// ArticleKeywords decodes the keyword field of every article in the
// window and counts occurrences of each distinct keyword, most frequent
// first.
func (s *Store) ArticleKeywords(ctx context.Context, days int) ([]domain.KeywordCount, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	var rows []string
	err := s.db.SelectContext(ctx, &rows,
		"SELECT keywords FROM articles WHERE published_date > ?", cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("select keywords: %w", err)
	}

	counts := make(map[string]int)
	for _, row := range rows {
		for _, keyword := range domain.SplitKeywords(row) {
			counts[keyword]++
		}
	}

	result := make([]domain.KeywordCount, 0, len(counts))
	for keyword, count := range counts {
		result = append(result, domain.KeywordCount{Keyword: keyword, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result, nil
}
