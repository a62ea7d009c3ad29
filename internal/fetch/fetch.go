package fetch

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"jobfeed-engine/internal/domain"
)

// Fetcher acquires raw listings from one upstream source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawListing, error)
}

// Result pairs a source name with whatever it managed to acquire.
type Result struct {
	Source   string
	Listings []domain.RawListing
}

// All runs every fetcher concurrently with a per-fetcher timeout and
// collects whatever arrives. A failing source is logged and skipped; the
// run continues with the rest. Order across sources is not meaningful and
// callers must not assume one.
func All(ctx context.Context, fetchers []Fetcher, timeout time.Duration) []Result {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	results := make(chan Result, len(fetchers))

	var g errgroup.Group
	for _, f := range fetchers {
		f := f
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Printf("[%s] fetching...", f.Name())
			listings, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[%s] fetch error: %v", f.Name(), err)
				return nil
			}
			results <- Result{Source: f.Name(), Listings: listings}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	var out []Result
	for res := range results {
		log.Printf("[fetch] source=%s listings=%d", res.Source, len(res.Listings))
		out = append(out, res)
	}
	return out
}

// Flatten concatenates all acquired listings in result order.
func Flatten(results []Result) []domain.RawListing {
	var out []domain.RawListing
	for _, res := range results {
		out = append(out, res.Listings...)
	}
	return out
}
