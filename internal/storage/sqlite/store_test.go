package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"threatwatch/internal/domain"
)

var testFeeds = []domain.FeedConfig{
	{Name: "Feed One", URL: "https://one.example.com/feed", Type: "rss", Priority: 10},
	{Name: "Feed Two", URL: "https://two.example.com/feed", Type: "atom", Priority: 5},
}

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sqlx.DB
	store *Store
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := Open(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.db = db

	s.store = NewStore(db)
	s.Require().NoError(s.store.Init(s.ctx, testFeeds))
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) sourceID(name string) int64 {
	sources, err := s.store.Sources(s.ctx)
	s.Require().NoError(err)
	for _, src := range sources {
		if src.Name == name {
			return src.ID
		}
	}
	s.Require().FailNow("source not found", name)
	return 0
}

func (s *StoreSuite) addArticle(sourceID int64, title, url string, published time.Time, keywords string) {
	added, err := s.store.AddArticle(s.ctx, &domain.Article{
		SourceID:      sourceID,
		Title:         title,
		URL:           url,
		PublishedDate: published,
		Summary:       "summary of " + title,
		FullContent:   "full content of " + title,
		Keywords:      keywords,
	})
	s.Require().NoError(err)
	s.Require().True(added)
}

func (s *StoreSuite) TestInit_Idempotent() {
	// A second init against the same file must neither fail nor
	// duplicate seeded sources.
	s.Require().NoError(s.store.Init(s.ctx, testFeeds))

	sources, err := s.store.Sources(s.ctx)
	s.NoError(err)
	s.Len(sources, 2)
}

func (s *StoreSuite) TestInit_SeedsMissingSourcesOnly() {
	more := append(testFeeds, domain.FeedConfig{
		Name: "Feed Three", URL: "https://three.example.com/feed", Type: "rss",
	})
	s.Require().NoError(s.store.Init(s.ctx, more))

	sources, err := s.store.Sources(s.ctx)
	s.NoError(err)
	s.Len(sources, 3)
}

func (s *StoreSuite) TestSources_OrderedByPriority() {
	sources, err := s.store.Sources(s.ctx)
	s.Require().NoError(err)

	s.Equal("Feed One", sources[0].Name)
	s.Equal(10, sources[0].Priority)
	s.Equal("Feed Two", sources[1].Name)
	s.Nil(sources[0].LastUpdated)
	s.Equal(0, sources[0].ErrorCount)
}

func (s *StoreSuite) TestUpdateSourceStatus() {
	id := s.sourceID("Feed One")

	s.Require().NoError(s.store.UpdateSourceStatus(s.ctx, id, false))
	s.Require().NoError(s.store.UpdateSourceStatus(s.ctx, id, false))

	sources, err := s.store.Sources(s.ctx)
	s.Require().NoError(err)
	var src domain.Source
	for _, candidate := range sources {
		if candidate.ID == id {
			src = candidate
		}
	}
	s.Equal(2, src.ErrorCount)
	s.Nil(src.LastUpdated, "failure must not touch last_updated")

	s.Require().NoError(s.store.UpdateSourceStatus(s.ctx, id, true))

	sources, err = s.store.Sources(s.ctx)
	s.Require().NoError(err)
	for _, candidate := range sources {
		if candidate.ID == id {
			src = candidate
		}
	}
	s.Equal(0, src.ErrorCount)
	s.NotNil(src.LastUpdated)
	s.WithinDuration(time.Now(), *src.LastUpdated, time.Minute)
}

func (s *StoreSuite) TestAddArticle_DuplicateURLIsSilentNoOp() {
	id := s.sourceID("Feed One")
	article := &domain.Article{
		SourceID:      id,
		Title:         "First",
		URL:           "https://example.com/article1",
		PublishedDate: time.Now(),
	}

	added, err := s.store.AddArticle(s.ctx, article)
	s.NoError(err)
	s.True(added)

	article.Title = "Same URL, different title"
	added, err = s.store.AddArticle(s.ctx, article)
	s.NoError(err)
	s.False(added)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count,
		"SELECT COUNT(*) FROM articles WHERE url = ?", article.URL))
	s.Equal(1, count)
}

func (s *StoreSuite) TestAddArticle_SetsRetrievedDate() {
	id := s.sourceID("Feed One")
	s.addArticle(id, "Dated", "https://example.com/dated", time.Now(), "")

	var retrieved time.Time
	s.Require().NoError(s.db.GetContext(s.ctx, &retrieved,
		"SELECT retrieved_date FROM articles WHERE url = ?", "https://example.com/dated"))
	s.WithinDuration(time.Now(), retrieved, time.Minute)
}

func (s *StoreSuite) TestAddArticle_UnknownSourceRejected() {
	_, err := s.store.AddArticle(s.ctx, &domain.Article{
		SourceID:      99999,
		Title:         "Orphan",
		URL:           "https://example.com/orphan",
		PublishedDate: time.Now(),
	})
	s.Error(err, "foreign key constraint must reject unknown sources")
}

func (s *StoreSuite) TestSearchArticles_RecencyWindow() {
	id := s.sourceID("Feed One")
	s.addArticle(id, "Fresh", "https://example.com/fresh", time.Now().Add(-1*time.Hour), "")
	s.addArticle(id, "Stale", "https://example.com/stale", time.Now().AddDate(0, 0, -8), "")

	articles, err := s.store.SearchArticles(s.ctx, "", 7, 20)
	s.Require().NoError(err)

	s.Require().Len(articles, 1)
	s.Equal("Fresh", articles[0].Title)
	s.Equal("Feed One", articles[0].SourceName)
}

func (s *StoreSuite) TestSearchArticles_QueryMatchesAnyField() {
	id := s.sourceID("Feed One")
	now := time.Now()
	s.addArticle(id, "Ransomware surge", "https://example.com/a", now, "malware")
	s.addArticle(id, "Quiet news", "https://example.com/b", now, "phishing,botnet")
	s.addArticle(id, "Unrelated", "https://example.com/c", now, "")

	byTitle, err := s.store.SearchArticles(s.ctx, "ransomware", 7, 20)
	s.Require().NoError(err)
	s.Len(byTitle, 1)

	byKeyword, err := s.store.SearchArticles(s.ctx, "botnet", 7, 20)
	s.Require().NoError(err)
	s.Len(byKeyword, 1)
	s.Equal("Quiet news", byKeyword[0].Title)

	byContent, err := s.store.SearchArticles(s.ctx, "full content of Unrelated", 7, 20)
	s.Require().NoError(err)
	s.Len(byContent, 1)

	none, err := s.store.SearchArticles(s.ctx, "zero matches expected", 7, 20)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestSearchArticles_OrderAndLimit() {
	id := s.sourceID("Feed One")
	now := time.Now()
	s.addArticle(id, "Oldest", "https://example.com/1", now.Add(-3*time.Hour), "")
	s.addArticle(id, "Middle", "https://example.com/2", now.Add(-2*time.Hour), "")
	s.addArticle(id, "Newest", "https://example.com/3", now.Add(-1*time.Hour), "")

	articles, err := s.store.SearchArticles(s.ctx, "", 7, 2)
	s.Require().NoError(err)

	s.Require().Len(articles, 2)
	s.Equal("Newest", articles[0].Title)
	s.Equal("Middle", articles[1].Title)
}

func (s *StoreSuite) TestArticleKeywords_CountsAcrossArticles() {
	id := s.sourceID("Feed One")
	now := time.Now()
	s.addArticle(id, "A", "https://example.com/a", now, "security,exploit")
	s.addArticle(id, "B", "https://example.com/b", now, "security,malware")

	counts, err := s.store.ArticleKeywords(s.ctx, 3)
	s.Require().NoError(err)

	s.Require().Len(counts, 3)
	s.Equal("security", counts[0].Keyword)
	s.Equal(2, counts[0].Count)
	s.Equal(1, counts[1].Count)
	s.Equal(1, counts[2].Count)
}

func (s *StoreSuite) TestArticleKeywords_WindowExcludesOldArticles() {
	id := s.sourceID("Feed One")
	s.addArticle(id, "Old", "https://example.com/old", time.Now().AddDate(0, 0, -10), "ancient")

	counts, err := s.store.ArticleKeywords(s.ctx, 3)
	s.Require().NoError(err)
	s.Empty(counts)
}

func (s *StoreSuite) TestArticleKeywords_EmptyKeywordFieldSkipped() {
	id := s.sourceID("Feed One")
	s.addArticle(id, "NoKeywords", "https://example.com/nk", time.Now(), "")

	counts, err := s.store.ArticleKeywords(s.ctx, 3)
	s.Require().NoError(err)
	s.Empty(counts)
}
