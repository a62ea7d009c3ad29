package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy is the suitability rule set. It is passed into the evaluator and
// the engine explicitly; nothing reads it as process-wide state.
type Policy struct {
	SkillsOwned          []string `yaml:"skills_owned"`
	BlacklistedCompanies []string `yaml:"blacklisted_companies"`
	BlacklistedTitles    []string `yaml:"blacklisted_titles"`
	BlacklistedKeywords  []string `yaml:"blacklisted_keywords"`

	// Scoring knobs. Historical configs disagree on these, so they are
	// config fields with versioned defaults rather than constants.
	SkillWeight   int      `yaml:"skill_weight"`
	TitleBonus    int      `yaml:"title_bonus"`
	TitleBonusAny []string `yaml:"title_bonus_any"`
	MinScore      int      `yaml:"min_score"`

	// ExperienceCeilingYears rejects listings whose description demands
	// more than this many years. 0 disables the guard.
	ExperienceCeilingYears int `yaml:"experience_ceiling_years"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Feed struct {
		Path           string `yaml:"path"`
		MirrorPath     string `yaml:"mirror_path"`
		RetentionHours int    `yaml:"retention_hours"`
		MaxRecords     int    `yaml:"max_records"` // 0 = uncapped
	} `yaml:"feed"`

	Policy Policy `yaml:"policy"`

	Sources struct {
		Board struct {
			Enabled  bool     `yaml:"enabled"`
			BaseURL  string   `yaml:"base_url"`
			Queries  []string `yaml:"queries"`
			Location string   `yaml:"location"`
			HoursOld int      `yaml:"hours_old"`
			// WidenHoursOld is the fallback lookback when a pass over
			// every query finds nothing.
			WidenHoursOld int `yaml:"widen_hours_old"`
		} `yaml:"board"`

		Email struct {
			Enabled          bool     `yaml:"enabled"`
			IMAPHost         string   `yaml:"imap_host"`
			IMAPPort         int      `yaml:"imap_port"`
			Username         string   `yaml:"username"`
			Mailbox          string   `yaml:"mailbox"`
			SearchSubjectAny []string `yaml:"search_subject_any"`
			MaxMessages      int      `yaml:"max_messages"`
		} `yaml:"email"`
	} `yaml:"sources"`

	Notify struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		From         string `yaml:"from"`
		To           string `yaml:"to"`
		DashboardURL string `yaml:"dashboard_url"`
		// WindowHourUTC is the one-hour daily wall-clock window in which
		// the gate may fire; at most one digest goes out per day when
		// set. -1 disables the window check.
		WindowHourUTC int `yaml:"window_hour_utc"`
	} `yaml:"notify"`
}

func (c Config) Retention() time.Duration {
	return time.Duration(c.Feed.RetentionHours) * time.Hour
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// LoadOrDefault reads the config file and falls back to the built-in
// defaults when the file is missing or unreadable. A broken config must
// not block a run; a stale feed is worse than default policy.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		log.Printf("[config] %s unreadable (%v); using built-in defaults", path, err)
		return Default()
	}
	cfg, res := NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			log.Printf("[config] invalid: %s", e)
		}
		log.Printf("[config] falling back to built-in defaults")
		return Default()
	}
	return cfg
}
