package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/fetch"
	"jobfeed-engine/internal/history"
	"jobfeed-engine/internal/notify"
	"jobfeed-engine/internal/run"
	"jobfeed-engine/internal/scheduler"
	"jobfeed-engine/internal/secrets"
)

func main() {
	every := flag.Duration("every", 0, "run repeatedly at this interval instead of once")
	historyTail := flag.Int("history", 0, "print the last N runs and exit")
	flag.Parse()

	_ = godotenv.Load()

	dataDir := os.Getenv("JOBFEED_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	cfg := loadConfig(dataDir)

	hist, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		// run history is best-effort; the feed does not depend on it
		log.Printf("[history] open: %v (continuing without history)", err)
		hist = nil
	}
	defer hist.Close()

	if *historyTail > 0 {
		printHistory(hist, *historyTail)
		return
	}

	// One run at a time. A held lock means another run is in flight;
	// skipping is the correct outcome, not an error.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Printf("[engine] another run holds the lock, skipping")
		return
	}
	defer lock.Unlock()

	// one gate for the whole process so scheduled runs share the
	// once-per-day window state
	deps := run.Deps{
		Fetchers: buildFetchers(cfg),
		History:  hist,
		Gate:     &notify.Gate{WindowHourUTC: cfg.Notify.WindowHourUTC},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *every > 0 {
		scheduler.Every(ctx, *every, "engine", func(ctx context.Context) error {
			return run.Once(ctx, cfg, deps)
		})
		return
	}

	if err := run.Once(ctx, cfg, deps); err != nil {
		log.Fatalf("[engine] %v", err)
	}
}

func loadConfig(dataDir string) config.Config {
	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Printf("[config] bootstrap: %v; using built-in defaults", err)
		return config.Default()
	}
	return config.LoadOrDefault(userCfgPath)
}

func buildFetchers(cfg config.Config) []fetch.Fetcher {
	var fetchers []fetch.Fetcher

	if cfg.Sources.Board.Enabled && cfg.Sources.Board.BaseURL != "" {
		limiter := fetch.NewHostLimiter(1.0, 2)
		fetchers = append(fetchers, fetch.NewBoard(fetch.BoardConfig{
			BaseURL:       cfg.Sources.Board.BaseURL,
			Queries:       cfg.Sources.Board.Queries,
			Location:      cfg.Sources.Board.Location,
			HoursOld:      cfg.Sources.Board.HoursOld,
			WidenHoursOld: cfg.Sources.Board.WidenHoursOld,
		}, limiter))
	}

	if cfg.Sources.Email.Enabled {
		account := secrets.IMAPAccount(cfg.Sources.Email.Username, cfg.Sources.Email.IMAPHost)
		password, err := secrets.IMAPPassword(account)
		if err != nil {
			log.Printf("[email] %v (skipping email source)", err)
		} else {
			fetchers = append(fetchers, fetch.NewEmail(fetch.EmailConfig{
				Host:        cfg.Sources.Email.IMAPHost,
				Port:        cfg.Sources.Email.IMAPPort,
				Username:    cfg.Sources.Email.Username,
				Password:    password,
				Mailbox:     cfg.Sources.Email.Mailbox,
				SubjectAny:  cfg.Sources.Email.SearchSubjectAny,
				MaxMessages: cfg.Sources.Email.MaxMessages,
			}))
		}
	}

	if len(fetchers) == 0 {
		log.Printf("[engine] no sources enabled; the run will only prune and republish")
	}
	return fetchers
}

func printHistory(hist *history.DB, n int) {
	if hist == nil {
		log.Fatal("run history unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runs, err := hist.Tail(ctx, n)
	if err != nil {
		log.Fatalf("history tail: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%s  fetched=%d accepted=%d added=%d pruned=%d feed=%d %s\n",
			r.StartedAt.Format(time.RFC3339), r.Fetched, r.Accepted, r.Added, r.Pruned, r.FeedSize, r.Note)
	}
}
