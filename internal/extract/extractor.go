// Package extract turns article pages into normalized text and derives
// keyword signals from it.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"threatwatch/internal/ratelimit"
	"threatwatch/internal/useragent"
)

const articleTimeout = 15 * time.Second

// Elements that never carry article text.
var skipSelectors = []string{"script", "style", "iframe", "nav", "footer", "header", "aside"}

// Structural selectors tried in order of preference when locating the
// main content container. Falls back to the document body.
var contentSelectors = []string{
	"article",
	".post-content",
	".entry-content",
	".article-body",
	".article-content",
	".content-article",
	".post__content",
	".story-body",
	"main",
	"#content",
	".content",
	"[itemprop='articleBody']",
	".main-content",
	"#main-content",
}

var (
	newlineRun = regexp.MustCompile(`\n+`)
	spaceRun   = regexp.MustCompile(`[ \t\f\v\r]+`)
)

// Extractor fetches article pages and extracts their body text.
type Extractor struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

func NewExtractor(limiter *ratelimit.Limiter, logger *slog.Logger) *Extractor {
	return &Extractor{
		httpClient: &http.Client{Timeout: articleTimeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// ArticleContent fetches url and returns its extracted body text and
// keywords. Extraction never fails: any fetch or parse fault degrades
// to a placeholder body and an empty keyword list so one bad article
// cannot abort a feed run.
func (e *Extractor) ArticleContent(ctx context.Context, url string) (string, []string) {
	body, err := e.fetch(ctx, url)
	if err != nil {
		e.logger.Error("content extraction failed", "url", url, "error", err)
		return fmt.Sprintf("Content extraction failed: %s", err), nil
	}
	return body, Keywords(body, MaxKeywords)
}

func (e *Extractor) fetch(ctx context.Context, url string) (string, error) {
	e.limiter.Wait(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	useragent.SetHeaders(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("article returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	for _, sel := range skipSelectors {
		doc.Find(sel).Remove()
	}

	return normalizeText(findMainContent(doc).Text()), nil
}

func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if content := doc.Find(sel).First(); content.Length() > 0 {
			return content
		}
	}
	return doc.Find("body")
}

// normalizeText collapses newline runs to a single newline and all
// other whitespace runs to a single space.
func normalizeText(text string) string {
	text = newlineRun.ReplaceAllString(text, "\n")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
