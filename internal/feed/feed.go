package feed

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"jobfeed-engine/internal/domain"
	"jobfeed-engine/internal/normalize"
)

// Options bound the feed: how long a record may live and how many
// records the store may hold. MaxRecords == 0 means uncapped.
type Options struct {
	Retention  time.Duration
	MaxRecords int
}

// Summary describes one reconciliation for logging, run history and the
// notification gate.
type Summary struct {
	Loaded  int
	Pruned  int
	Skipped int // incoming records dropped as duplicates
	Added   int
	Total   int

	// New holds the records merged this run, in batch order.
	New []domain.ListingRecord
}

// Top returns the highest-scoring record merged this run, or nil.
func (s Summary) Top() *domain.ListingRecord {
	var top *domain.ListingRecord
	for i := range s.New {
		if top == nil || s.New[i].Analysis.Score > top.Analysis.Score {
			top = &s.New[i]
		}
	}
	return top
}

// record is the wire form of a ListingRecord in the persisted store.
// FoundAt stays a string so one malformed timestamp cannot poison the
// whole file; parsing is best-effort at load time.
type record struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Company    string          `json:"company"`
	Location   string          `json:"location"`
	DatePosted string          `json:"date_posted"`
	URL        string          `json:"job_url"`
	SourceSite string          `json:"site"`
	FoundAt    string          `json:"found_at"`
	Analysis   domain.Analysis `json:"analysis"`
}

// foundAtFormats lists accepted persisted timestamp forms: canonical
// RFC 3339 plus the legacy plain form (read as UTC). Anything else
// leaves FoundAt zero and the record is pruned on the next pass.
var foundAtFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseFoundAt(s string) (time.Time, bool) {
	for _, layout := range foundAtFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Load reads the persisted feed. A missing or unparseable store loads as
// empty; corruption must never block a run.
func Load(path string) []domain.ListingRecord {
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[feed] read %s: %v (starting empty)", path, err)
		}
		return nil
	}

	var stored []record
	if err := json.Unmarshal(b, &stored); err != nil {
		log.Printf("[feed] parse %s: %v (starting empty)", path, err)
		return nil
	}

	out := make([]domain.ListingRecord, 0, len(stored))
	for _, r := range stored {
		foundAt, _ := parseFoundAt(r.FoundAt) // zero time prunes below
		out = append(out, domain.ListingRecord{
			ID:         r.ID,
			Title:      r.Title,
			Company:    r.Company,
			Location:   r.Location,
			DatePosted: r.DatePosted,
			URL:        r.URL,
			SourceSite: r.SourceSite,
			FoundAt:    foundAt,
			Analysis:   r.Analysis,
		})
	}
	return out
}

// Reconcile folds a batch of freshly accepted records into the prior
// feed: prune stale records, drop duplicates by id and by (title,
// company) signature, stamp and prepend the survivors, cap the result.
// Newest first throughout; prior order is preserved for retained
// records, batch order for new ones.
func Reconcile(prior, incoming []domain.ListingRecord, now time.Time, opt Options) ([]domain.ListingRecord, Summary) {
	now = now.UTC()
	sum := Summary{Loaded: len(prior)}

	cutoff := now.Add(-opt.Retention)
	retained := make([]domain.ListingRecord, 0, len(prior))
	for _, rec := range prior {
		if !rec.FoundAt.After(cutoff) {
			sum.Pruned++
			continue
		}
		retained = append(retained, rec)
	}

	byID := make(map[string]bool, len(retained))
	bySig := make(map[string]bool, len(retained))
	for _, rec := range retained {
		byID[rec.ID] = true
		bySig[normalize.Signature(rec.Title, rec.Company)] = true
	}

	var fresh []domain.ListingRecord
	for _, rec := range incoming {
		sig := normalize.Signature(rec.Title, rec.Company)
		if byID[rec.ID] || bySig[sig] {
			sum.Skipped++
			continue
		}
		// index immediately so near-duplicates within the batch collapse too
		byID[rec.ID] = true
		bySig[sig] = true

		rec.FoundAt = now
		fresh = append(fresh, rec)
	}

	merged := append(fresh, retained...)
	if opt.MaxRecords > 0 && len(merged) > opt.MaxRecords {
		merged = merged[:opt.MaxRecords]
	}

	sum.Added = len(fresh)
	sum.New = fresh
	sum.Total = len(merged)
	return merged, sum
}
