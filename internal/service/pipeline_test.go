package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"threatwatch/internal/domain"
	"threatwatch/internal/service/mocks"
	"threatwatch/internal/storage/sqlite"
)

// PipelineTestSuite exercises the coordinator against a real SQLite
// store, with only the network-facing pieces mocked out.
type PipelineTestSuite struct {
	suite.Suite
	ctx  context.Context
	ctrl *gomock.Controller

	fetcher   *mocks.MockFeedFetcher
	extractor *mocks.MockContentExtractor
	store     *sqlite.Store

	monitor *Monitor
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())

	s.fetcher = mocks.NewMockFeedFetcher(s.ctrl)
	s.extractor = mocks.NewMockContentExtractor(s.ctrl)

	db, err := sqlite.Open(filepath.Join(s.T().TempDir(), "pipeline.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.store = sqlite.NewStore(db)
	s.Require().NoError(s.store.Init(s.ctx, []domain.FeedConfig{
		{Name: "Test Source", URL: "https://example.com/feed", Type: "rss", Priority: 10},
	}))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.monitor = NewMonitor(s.fetcher, s.extractor, s.store, nil, logger, 2)
}

func (s *PipelineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) TestIngestSearchAndTrends() {
	published := time.Now().Add(-1 * time.Hour)
	doc := &domain.FeedDocument{Entries: []domain.FeedEntry{
		{
			Title:     "Test Article",
			Link:      "https://example.com/article1",
			Published: &published,
			Summary:   "A critical advisory",
		},
	}}

	s.fetcher.EXPECT().Fetch(gomock.Any(), "https://example.com/feed", "rss").
		Return(doc, nil).Times(2)
	s.extractor.EXPECT().ArticleContent(gomock.Any(), "https://example.com/article1").
		Return("extracted article body", []string{"security", "exploit"}).Times(2)

	stats, err := s.monitor.UpdateFeeds(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, stats.FeedsProcessed)
	s.Equal(1, stats.NewArticles)
	s.Equal(0, stats.Errors)

	articles, err := s.monitor.SearchArticles(s.ctx, "Test", 1, 20)
	s.Require().NoError(err)
	s.Require().Len(articles, 1)
	s.Equal("Test Article", articles[0].Title)
	s.Equal("Test Source", articles[0].SourceName)
	s.Equal("A critical advisory", articles[0].Summary)

	trends, err := s.monitor.TrendingKeywords(s.ctx, 1, 15)
	s.Require().NoError(err)
	s.Require().Len(trends, 2)
	s.Equal(1, trends[0].Count)

	// Running the same cycle again must be a no-op for counts: the URL
	// is already stored.
	stats, err = s.monitor.UpdateFeeds(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, stats.FeedsProcessed)
	s.Equal(0, stats.NewArticles)
	s.Equal(0, stats.Errors)
}
