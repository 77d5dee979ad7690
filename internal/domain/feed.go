package domain

import "time"

// FeedEntry is one item of a fetched feed document. Every field beyond
// Title and Link is optional; consumers resolve them through explicit
// fallback chains rather than assuming presence.
type FeedEntry struct {
	Title       string
	Link        string
	Published   *time.Time
	Updated     *time.Time
	Created     *time.Time
	Summary     string
	Description string
	Content     string
}

// FeedDocument is the parsed result of fetching a source's feed URL.
type FeedDocument struct {
	Title   string
	Entries []FeedEntry
}

// FeedConfig describes one feed origin as supplied by configuration.
type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Priority int    `yaml:"priority"`
}
