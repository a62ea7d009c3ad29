package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndTail(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := db.Record(ctx, Run{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Fetched:    10 * (i + 1),
			Accepted:   5 * (i + 1),
			Added:      i,
			Pruned:     1,
			FeedSize:   20 + i,
		})
		require.NoError(t, err)
	}

	runs, err := db.Tail(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, 30, runs[0].Fetched, "newest run first")
	assert.Equal(t, 20, runs[1].Fetched)
	assert.Equal(t, base.Add(2*time.Hour), runs[0].StartedAt)
}

func TestTailEmpty(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.Tail(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
