package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/fetch"
)

type stubFetcher struct {
	listings []domain.RawListing
	err      error
}

func (s stubFetcher) Name() string { return "stub" }
func (s stubFetcher) Fetch(ctx context.Context) ([]domain.RawListing, error) {
	return s.listings, s.err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Feed.Path = filepath.Join(dir, "jobs.json")
	cfg.Feed.MirrorPath = filepath.Join(dir, "public", "jobs.json")
	cfg.Policy.SkillsOwned = []string{"Python", "MySQL", "React", "Git", "CSS"}
	cfg.Policy.SkillWeight = 100
	cfg.Policy.TitleBonus = 0
	cfg.Notify.Enabled = false
	return cfg
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOnceAcceptsAndPersists(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	deps := Deps{
		Fetchers: []fetch.Fetcher{stubFetcher{listings: []domain.RawListing{
			{
				Title:       "Junior Python Developer",
				Company:     "Acme",
				Description: "Python, MySQL and Git.",
				URL:         "https://example.com/job/1",
			},
			{
				Title:       "Senior Python Developer", // blacklisted title
				Company:     "Globex",
				Description: "Python, MySQL and Git.",
				URL:         "https://example.com/job/2",
			},
		}}},
		Now: fixedNow(now),
	}

	require.NoError(t, Once(context.Background(), cfg, deps))

	records := feed.Load(cfg.Feed.Path)
	require.Len(t, records, 1, "only the suitable record enters the feed")
	assert.Equal(t, "Junior Python Developer", records[0].Title)
	assert.Equal(t, 60, records[0].Analysis.Score)
	assert.True(t, records[0].FoundAt.Equal(now))

	canonical, err := os.ReadFile(cfg.Feed.Path)
	require.NoError(t, err)
	published, err := os.ReadFile(cfg.Feed.MirrorPath)
	require.NoError(t, err)
	assert.Equal(t, canonical, published)
}

func TestOnceIsIdempotentAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	deps := Deps{
		Fetchers: []fetch.Fetcher{stubFetcher{listings: []domain.RawListing{{
			Title:       "Junior Python Developer",
			Company:     "Acme",
			Description: "Python and React.",
			URL:         "https://example.com/job/1",
		}}}},
		Now: fixedNow(now),
	}

	require.NoError(t, Once(context.Background(), cfg, deps))
	first := feed.Load(cfg.Feed.Path)

	deps.Now = fixedNow(now.Add(10 * time.Minute))
	require.NoError(t, Once(context.Background(), cfg, deps))
	second := feed.Load(cfg.Feed.Path)

	require.Len(t, second, 1, "overlapping run must not duplicate the feed")
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].FoundAt.Equal(first[0].FoundAt), "retained record keeps its original FoundAt")
}

func TestOnceWithNoFetchersStillPrunes(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// seed a feed with one fresh and one stale record
	stale := `[
  {"id": "fresh", "title": "Fresh", "company": "Acme", "job_url": "https://x/1",
   "found_at": "2026-08-30T11:00:00Z", "analysis": {"is_suitable": true, "match_score": 50}},
  {"id": "stale", "title": "Stale", "company": "Globex", "job_url": "https://x/2",
   "found_at": "2026-08-29T06:00:00Z", "analysis": {"is_suitable": true, "match_score": 50}}
]`
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Feed.Path), 0o755))
	require.NoError(t, os.WriteFile(cfg.Feed.Path, []byte(stale), 0o644))

	require.NoError(t, Once(context.Background(), cfg, Deps{Now: fixedNow(now)}))

	records := feed.Load(cfg.Feed.Path)
	require.Len(t, records, 1, "a run with nothing fetched still evicts stale records")
	assert.Equal(t, "fresh", records[0].ID)
}

func TestOnceSurvivesCorruptPriorFeed(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Feed.Path), 0o755))
	require.NoError(t, os.WriteFile(cfg.Feed.Path, []byte("%%% not json %%%"), 0o644))

	deps := Deps{
		Fetchers: []fetch.Fetcher{stubFetcher{listings: []domain.RawListing{{
			Title:       "Junior Developer",
			Company:     "Acme",
			Description: "Python.",
			URL:         "https://example.com/job/1",
		}}}},
		Now: fixedNow(now),
	}

	require.NoError(t, Once(context.Background(), cfg, deps), "corrupt prior state must not block ingestion")
	assert.Len(t, feed.Load(cfg.Feed.Path), 1)
}

func TestOnceContinuesPastFailingSource(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	deps := Deps{
		Fetchers: []fetch.Fetcher{
			stubFetcher{err: errors.New("upstream down")},
			stubFetcher{listings: []domain.RawListing{{
				Title:       "Junior Developer",
				Company:     "Acme",
				Description: "Python.",
				URL:         "https://example.com/job/1",
			}}},
		},
		Now: fixedNow(now),
	}

	require.NoError(t, Once(context.Background(), cfg, deps))
	assert.Len(t, feed.Load(cfg.Feed.Path), 1)
}
