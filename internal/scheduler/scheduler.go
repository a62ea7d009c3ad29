package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs the task immediately and then on each tick until the
// context is cancelled. Runs never overlap: the ticker fires are
// consumed one at a time on this goroutine.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	runOne := func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}

	runOne()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOne()
		}
	}
}
