package domain

import (
	"strings"
	"time"
)

// Source is a configured feed endpoint tracked in the database.
type Source struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	URL         string     `db:"url"`
	Type        string     `db:"type"` // "rss" or "atom"
	LastUpdated *time.Time `db:"last_updated"`
	ErrorCount  int        `db:"error_count"`
	Priority    int        `db:"priority"`
}

// Article is one deduplicated piece of ingested content. URL is the
// dedup key; rows are never updated after insert.
type Article struct {
	ID            int64     `db:"id"`
	SourceID      int64     `db:"source_id"`
	Title         string    `db:"title"`
	URL           string    `db:"url"`
	PublishedDate time.Time `db:"published_date"`
	RetrievedDate time.Time `db:"retrieved_date"`
	Summary       string    `db:"summary"`
	FullContent   string    `db:"full_content"`
	Keywords      string    `db:"keywords"` // comma-delimited
}

// ArticleView is the row shape returned by searches: the article joined
// with its source name, without the full body.
type ArticleView struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	URL           string    `db:"url" json:"url"`
	PublishedDate time.Time `db:"published_date" json:"published_date"`
	Summary       string    `db:"summary" json:"summary"`
	Keywords      string    `db:"keywords" json:"keywords"`
	SourceName    string    `db:"source_name" json:"source_name"`
}

// KeywordCount is one keyword with its occurrence count across articles.
type KeywordCount struct {
	Keyword string
	Count   int
}

// JoinKeywords encodes a keyword list into the stored comma-delimited
// form. Keyword values must not contain commas.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}

// SplitKeywords decodes the stored comma-delimited keyword field.
func SplitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
