package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfeed-engine/internal/domain"
)

const resultsPage = `
<html><body>
  <div class="job-card">
    <h2 class="job-title">Junior Go Developer</h2>
    <a href="/job/101">View</a>
    <span class="company">Acme</span>
    <span class="location">Remote, India</span>
    <p class="description">Entry level role using Go and Docker.</p>
    <time datetime="2026-08-29">yesterday</time>
  </div>
  <li class="job-result">
    <a href="https://external.example.org/post/7">Junior QA Engineer</a>
    <span class="company-name">Globex</span>
  </li>
</body></html>`

func TestBoardFetchParsesCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Junior Go Developer", r.URL.Query().Get("q"))
		assert.Equal(t, "India", r.URL.Query().Get("l"))
		assert.Equal(t, "24", r.URL.Query().Get("hours"))
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	b := NewBoard(BoardConfig{
		BaseURL:  srv.URL + "/search",
		Queries:  []string{"Junior Go Developer"},
		Location: "India",
		HoursOld: 24,
	}, NewHostLimiter(100, 10))

	listings, err := b.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Junior Go Developer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Remote, India", first.Location)
	assert.Equal(t, "Entry level role using Go and Docker.", first.Description)
	assert.Equal(t, srv.URL+"/job/101", first.URL, "relative links resolve against the board host")
	assert.Equal(t, "2026-08-29", first.DatePosted)

	second := listings[1]
	assert.Equal(t, "Junior QA Engineer", second.Title, "anchor text backs up a missing title node")
	assert.Equal(t, "Globex", second.Company)
	assert.Equal(t, "https://external.example.org/post/7", second.URL)
}

func TestBoardFetchResolvesProtocolRelativeLinks(t *testing.T) {
	page := `
<html><body>
  <div class="job-card">
    <h2 class="job-title">Junior Dev</h2>
    <a href="//cdn.example.net/post/9">View</a>
  </div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	b := NewBoard(BoardConfig{
		BaseURL:  srv.URL + "/search",
		Queries:  []string{"anything"},
		HoursOld: 24,
	}, NewHostLimiter(100, 10))

	listings, err := b.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "http://cdn.example.net/post/9", listings[0].URL,
		"scheme-relative links inherit the board scheme, not its host")
}

func TestBoardFetchWidensWhenEmpty(t *testing.T) {
	var hours []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.URL.Query().Get("hours")
		hours = append(hours, h)
		if h == "36" {
			_, _ = w.Write([]byte(resultsPage))
			return
		}
		_, _ = w.Write([]byte(`<html><body>no results</body></html>`))
	}))
	defer srv.Close()

	b := NewBoard(BoardConfig{
		BaseURL:       srv.URL + "/search",
		Queries:       []string{"anything"},
		HoursOld:      24,
		WidenHoursOld: 36,
	}, NewHostLimiter(100, 10))

	listings, err := b.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, listings)
	assert.Equal(t, []string{"24", "36"}, hours, "empty first pass retries once with the wider window")
}

func TestBoardFetchSkipsFailingQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	b := NewBoard(BoardConfig{
		BaseURL:  srv.URL + "/search",
		Queries:  []string{"bad", "good"},
		HoursOld: 24,
	}, NewHostLimiter(100, 10))

	listings, err := b.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 2, "one failing query must not sink the others")
}

func TestAllCollectsAcrossFetchersAndSkipsFailures(t *testing.T) {
	ok := fetcherFunc{name: "ok", listings: 3}
	bad := fetcherFunc{name: "bad", fail: true}

	results := All(context.Background(), []Fetcher{ok, bad}, time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Source)
	assert.Len(t, Flatten(results), 3)
}

type fetcherFunc struct {
	name     string
	listings int
	fail     bool
}

func (f fetcherFunc) Name() string { return f.name }

func (f fetcherFunc) Fetch(ctx context.Context) ([]domain.RawListing, error) {
	if f.fail {
		return nil, errors.New("upstream down")
	}
	out := make([]domain.RawListing, f.listings)
	for i := range out {
		out[i] = domain.RawListing{URL: fmt.Sprintf("https://example.com/%s/%d", f.name, i)}
	}
	return out, nil
}
