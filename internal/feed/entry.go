package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"threatwatch/internal/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// PublishedDate resolves an entry's timestamp through the fallback
// chain published, updated, created. When none is present the current
// time is used; it never fails.
func PublishedDate(entry domain.FeedEntry) time.Time {
	switch {
	case entry.Published != nil:
		return *entry.Published
	case entry.Updated != nil:
		return *entry.Updated
	case entry.Created != nil:
		return *entry.Created
	default:
		return time.Now()
	}
}

// Summary resolves an entry's summary text through the fallback chain
// summary, description, content, then a fixed placeholder. The result
// is HTML-stripped and whitespace-normalized.
func Summary(entry domain.FeedEntry) string {
	var raw string
	switch {
	case entry.Summary != "":
		raw = entry.Summary
	case entry.Description != "":
		raw = entry.Description
	case entry.Content != "":
		raw = entry.Content
	default:
		return "No summary available"
	}
	return StripHTML(raw)
}

// StripHTML removes markup from a fragment, collapsing block and inline
// separation to single spaces and trimming the result.
func StripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(fragment, " "))
	}

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	text := strings.Join(parts, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
