package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobfeed-engine/internal/domain"
)

// Persist replaces the store wholesale: marshal, write to a temp file,
// rename over the canonical path, then mirror the same bytes to the
// published path. A reader never observes a partial store.
func Persist(path, mirrorPath string, records []domain.ListingRecord) error {
	stored := make([]record, 0, len(records))
	for _, rec := range records {
		stored = append(stored, record{
			ID:         rec.ID,
			Title:      rec.Title,
			Company:    rec.Company,
			Location:   rec.Location,
			DatePosted: rec.DatePosted,
			URL:        rec.URL,
			SourceSite: rec.SourceSite,
			FoundAt:    rec.FoundAt.UTC().Format(time.RFC3339),
			Analysis:   rec.Analysis,
		})
	}

	b, err := json.MarshalIndent(stored, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	b = append(b, '\n')

	if err := writeAtomic(path, b); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	if mirrorPath != "" {
		if err := writeAtomic(mirrorPath, b); err != nil {
			return fmt.Errorf("write feed mirror: %w", err)
		}
	}
	return nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
