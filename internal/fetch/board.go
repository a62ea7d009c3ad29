package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobfeed-engine/internal/domain"
)

// BoardConfig points the fetcher at a job-board search endpoint that
// renders result cards as HTML.
type BoardConfig struct {
	BaseURL  string
	Queries  []string
	Location string
	HoursOld int
	// WidenHoursOld is tried once when a full pass over every query
	// comes back empty.
	WidenHoursOld int
}

type BoardFetcher struct {
	cfg     BoardConfig
	hc      *http.Client
	limiter *HostLimiter
}

func NewBoard(cfg BoardConfig, limiter *HostLimiter) *BoardFetcher {
	return &BoardFetcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (b *BoardFetcher) Name() string { return "board" }

func (b *BoardFetcher) Fetch(ctx context.Context) ([]domain.RawListing, error) {
	out := b.fetchAll(ctx, b.cfg.HoursOld)
	if len(out) == 0 && b.cfg.WidenHoursOld > b.cfg.HoursOld {
		log.Printf("[board] nothing in last %dh, widening to %dh", b.cfg.HoursOld, b.cfg.WidenHoursOld)
		out = b.fetchAll(ctx, b.cfg.WidenHoursOld)
	}
	return out, nil
}

func (b *BoardFetcher) fetchAll(ctx context.Context, hoursOld int) []domain.RawListing {
	var out []domain.RawListing
	for _, q := range b.cfg.Queries {
		listings, err := b.fetchQuery(ctx, q, hoursOld)
		if err != nil {
			// one bad query must not sink the run
			log.Printf("[board] query %q: %v", q, err)
			continue
		}
		out = append(out, listings...)
	}
	return out
}

func (b *BoardFetcher) fetchQuery(ctx context.Context, query string, hoursOld int) ([]domain.RawListing, error) {
	searchURL, err := b.searchURL(query, hoursOld)
	if err != nil {
		return nil, err
	}

	if err := b.limiter.WaitURL(ctx, searchURL); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", "jobfeed-engine/1.0 (+local)")

	res, err := b.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("board status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("board parse html: %w", err)
	}

	var listings []domain.RawListing
	doc.Find("div.job-card, li.job-result, article.job").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		href = b.resolve(href)

		title := cleanText(card.Find("h2, .job-title").First().Text())
		if title == "" {
			title = cleanText(link.Text())
		}

		listings = append(listings, domain.RawListing{
			Title:       title,
			Company:     cleanText(card.Find(".company, .company-name").First().Text()),
			Location:    cleanText(card.Find(".location").First().Text()),
			Description: cleanText(card.Find(".description, .job-snippet").First().Text()),
			URL:         href,
			DatePosted:  postedDate(card),
			SourceSite:  b.site(),
		})
	})
	return listings, nil
}

func (b *BoardFetcher) searchURL(query string, hoursOld int) (string, error) {
	u, err := url.Parse(b.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("board base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if b.cfg.Location != "" {
		q.Set("l", b.cfg.Location)
	}
	if hoursOld > 0 {
		q.Set("hours", strconv.Itoa(hoursOld))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resolve makes a card link absolute against the board base URL. This
// also handles protocol-relative links (//host/path), which inherit the
// board's scheme.
func (b *BoardFetcher) resolve(href string) string {
	base, err := url.Parse(b.cfg.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (b *BoardFetcher) site() string {
	u, err := url.Parse(b.cfg.BaseURL)
	if err != nil || u.Host == "" {
		return "board"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func postedDate(card *goquery.Selection) string {
	if dt, ok := card.Find("time").First().Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	return cleanText(card.Find(".posted, .date").First().Text())
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
