// Package export writes search results to JSON and CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"threatwatch/internal/domain"
)

type jsonReport struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	ArticleCount int                  `json:"article_count"`
	Articles     []domain.ArticleView `json:"articles"`
}

// JSON writes articles as a report object with generation metadata.
func JSON(w io.Writer, articles []domain.ArticleView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		GeneratedAt:  time.Now(),
		ArticleCount: len(articles),
		Articles:     articles,
	})
}

// CSV writes articles with the fixed column order
// title, source_name, published_date, url, summary, keywords.
func CSV(w io.Writer, articles []domain.ArticleView) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"title", "source_name", "published_date", "url", "summary", "keywords"}); err != nil {
		return err
	}
	for _, a := range articles {
		record := []string{
			a.Title,
			a.SourceName,
			a.PublishedDate.Format(time.RFC3339),
			a.URL,
			a.Summary,
			a.Keywords,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFile writes the JSON report to filename, creating parent
// directories as needed.
func JSONFile(filename string, articles []domain.ArticleView) error {
	return toFile(filename, articles, JSON)
}

// CSVFile writes the CSV report to filename, creating parent
// directories as needed.
func CSVFile(filename string, articles []domain.ArticleView) error {
	return toFile(filename, articles, CSV)
}

func toFile(filename string, articles []domain.ArticleView, write func(io.Writer, []domain.ArticleView) error) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	if err := write(f, articles); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}
