package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus findings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Policy.SkillsOwned = trimList(out.Policy.SkillsOwned)
	out.Policy.BlacklistedCompanies = trimList(out.Policy.BlacklistedCompanies)
	out.Policy.BlacklistedTitles = trimList(out.Policy.BlacklistedTitles)
	out.Policy.BlacklistedKeywords = trimList(out.Policy.BlacklistedKeywords)
	out.Policy.TitleBonusAny = trimList(out.Policy.TitleBonusAny)
	out.Sources.Board.Queries = trimList(out.Sources.Board.Queries)
	out.Sources.Email.SearchSubjectAny = trimList(out.Sources.Email.SearchSubjectAny)

	// ---- Validation rules ----

	if strings.TrimSpace(out.Feed.Path) == "" {
		res.addErr("feed.path is required")
	}
	if out.Feed.RetentionHours <= 0 {
		res.addErr("feed.retention_hours must be > 0")
	}
	if out.Feed.MaxRecords < 0 {
		res.addErr("feed.max_records must be >= 0")
	}

	if out.Policy.SkillWeight < 0 || out.Policy.SkillWeight > 100 {
		res.addErr("policy.skill_weight must be 0..100")
	}
	if out.Policy.TitleBonus < 0 || out.Policy.TitleBonus > 100 {
		res.addErr("policy.title_bonus must be 0..100")
	}
	if out.Policy.MinScore < 0 || out.Policy.MinScore > 100 {
		res.addErr("policy.min_score must be 0..100")
	}
	if out.Policy.ExperienceCeilingYears < 0 {
		res.addErr("policy.experience_ceiling_years must be >= 0")
	}
	if len(out.Policy.SkillsOwned) == 0 {
		res.addWarn("policy.skills_owned is empty; every listing will score 0 before the title bonus.")
	}

	if out.Sources.Board.Enabled {
		if len(out.Sources.Board.Queries) == 0 {
			res.addWarn("board source enabled with no queries; it will fetch nothing.")
		}
		if out.Sources.Board.WidenHoursOld > 0 && out.Sources.Board.WidenHoursOld <= out.Sources.Board.HoursOld {
			res.addWarn("sources.board.widen_hours_old (%d) is not wider than hours_old (%d).",
				out.Sources.Board.WidenHoursOld, out.Sources.Board.HoursOld)
		}
	}

	if out.Sources.Email.Enabled {
		if strings.TrimSpace(out.Sources.Email.IMAPHost) == "" {
			res.addErr("sources.email.imap_host is required when email is enabled")
		}
		if out.Sources.Email.IMAPPort == 0 {
			res.addErr("sources.email.imap_port is required when email is enabled")
		}
		if strings.TrimSpace(out.Sources.Email.Username) == "" {
			res.addErr("sources.email.username is required when email is enabled")
		}
		if strings.TrimSpace(out.Sources.Email.Mailbox) == "" {
			res.addErr("sources.email.mailbox is required when email is enabled")
		}
		if len(out.Sources.Email.SearchSubjectAny) == 0 {
			res.addWarn("sources.email.search_subject_any is empty; the inbox fetch may find nothing.")
		}
	}

	if out.Notify.Enabled {
		if strings.TrimSpace(out.Notify.SMTPHost) == "" {
			res.addErr("notify.smtp_host is required when notify is enabled")
		}
		if strings.TrimSpace(out.Notify.To) == "" {
			res.addErr("notify.to is required when notify is enabled")
		}
		if out.Notify.WindowHourUTC < -1 || out.Notify.WindowHourUTC > 23 {
			res.addErr("notify.window_hour_utc must be -1..23")
		}
	}

	return out, res
}
