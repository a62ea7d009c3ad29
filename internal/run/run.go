package run

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/feed"
	"jobfeed-engine/internal/fetch"
	"jobfeed-engine/internal/history"
	"jobfeed-engine/internal/normalize"
	"jobfeed-engine/internal/notify"
	"jobfeed-engine/internal/policy"
	"jobfeed-engine/internal/secrets"
)

// Deps are the collaborators one run needs. History may be nil; Now is
// swappable for tests. Gate may be nil for a one-shot run; scheduled
// callers should pass one gate shared across runs so the once-per-day
// window holds.
type Deps struct {
	Fetchers []fetch.Fetcher
	History  *history.DB
	Gate     *notify.Gate
	Now      func() time.Time
}

// Once executes a single fetch → evaluate → reconcile → persist →
// notify cycle. Data-quality problems never fail the run; only an
// unwritable feed does. A run with zero fetched records still prunes
// and persists so stale listings get evicted.
func Once(ctx context.Context, cfg config.Config, deps Deps) error {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	started := now().UTC()

	results := fetch.All(ctx, deps.Fetchers, 2*time.Minute)
	raws := fetch.Flatten(results)

	accepted := evaluateAll(cfg.Policy, raws)
	log.Printf("[run] fetched=%d accepted=%d", len(raws), len(accepted))

	prior := feed.Load(cfg.Feed.Path)
	merged, sum := feed.Reconcile(prior, accepted, now(), feed.Options{
		Retention:  cfg.Retention(),
		MaxRecords: cfg.Feed.MaxRecords,
	})

	if err := feed.Persist(cfg.Feed.Path, cfg.Feed.MirrorPath, merged); err != nil {
		return fmt.Errorf("persist feed: %w", err)
	}
	log.Printf("[run] feed=%d added=%d pruned=%d dup_skipped=%d",
		sum.Total, sum.Added, sum.Pruned, sum.Skipped)

	recordHistory(ctx, deps.History, started, now().UTC(), len(raws), len(accepted), sum)
	announce(cfg, deps.Gate, sum)
	return nil
}

// evaluateAll normalizes each raw listing and keeps the suitable ones,
// verdict attached. Unsuitable records never enter the feed.
func evaluateAll(pol config.Policy, raws []domain.RawListing) []domain.ListingRecord {
	var accepted []domain.ListingRecord
	for _, raw := range raws {
		rec := normalizeAndClean(&raw)
		verdict := policy.Evaluate(pol, raw)
		if !verdict.Suitable {
			continue
		}
		rec.Analysis = verdict
		accepted = append(accepted, rec)
	}
	return accepted
}

// normalizeAndClean canonicalizes the raw listing and feeds the cleaned
// display fields back so the verdict (reason, share message) uses the
// same sentinel values the feed stores.
func normalizeAndClean(raw *domain.RawListing) domain.ListingRecord {
	rec := normalize.Record(*raw)
	raw.Title = rec.Title
	raw.Company = rec.Company
	raw.Location = rec.Location
	return rec
}

func recordHistory(ctx context.Context, db *history.DB, started, finished time.Time, fetched, accepted int, sum feed.Summary) {
	if db == nil {
		return
	}
	err := db.Record(ctx, history.Run{
		StartedAt:  started,
		FinishedAt: finished,
		Fetched:    fetched,
		Accepted:   accepted,
		Added:      sum.Added,
		Pruned:     sum.Pruned,
		FeedSize:   sum.Total,
	})
	if err != nil {
		log.Printf("[history] record: %v", err)
	}
}

func announce(cfg config.Config, gate *notify.Gate, sum feed.Summary) {
	if !cfg.Notify.Enabled {
		return
	}

	password, credsErr := secrets.SMTPPassword(secrets.SMTPAccount(cfg.Notify.From, cfg.Notify.SMTPHost))

	if gate == nil {
		gate = &notify.Gate{WindowHourUTC: cfg.Notify.WindowHourUTC}
	}
	decision := gate.Decide(sum.Added, credsErr == nil)
	if !decision.Send {
		log.Printf("[notify] suppressed: %s", decision.Reason)
		return
	}

	subject, body, err := notify.Compose(notify.Digest{
		NewCount:     sum.Added,
		Top:          sum.New,
		DashboardURL: cfg.Notify.DashboardURL,
	})
	if err != nil {
		log.Printf("[notify] compose: %v", err)
		return
	}

	err = notify.Send(notify.SMTPConfig{
		Host:     cfg.Notify.SMTPHost,
		Port:     cfg.Notify.SMTPPort,
		From:     cfg.Notify.From,
		To:       cfg.Notify.To,
		Password: password,
	}, subject, body)
	if err != nil {
		// best-effort: a transport failure never fails the run
		log.Printf("[notify] send: %v", err)
		return
	}
	gate.MarkSent()
	log.Printf("[notify] sent digest (%d new)", sum.Added)
}
