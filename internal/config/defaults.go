package config

// Default returns the built-in fallback configuration. The policy values
// mirror the shipped defaults so a missing config file still produces a
// useful feed.
func Default() Config {
	var cfg Config

	cfg.App.DataDir = "data"
	cfg.Feed.Path = "data/jobs.json"
	cfg.Feed.MirrorPath = "frontend/public/data/jobs.json"
	cfg.Feed.RetentionHours = 24
	cfg.Feed.MaxRecords = 0

	cfg.Policy = Policy{
		SkillsOwned: []string{
			"Python", "MySQL", "HTML", "CSS", "JavaScript", "React", "TypeScript", "Git",
		},
		BlacklistedCompanies: []string{
			"Dice", "Braintrust", "Toptal", "CyberCoders", "Relevel", "Hirist",
		},
		BlacklistedTitles: []string{
			"Senior", "Lead", "Principal", "Manager", "Architect", "Sr.", "Head", "Staff",
		},
		BlacklistedKeywords: []string{
			"flutter", "dart", "android", "ios", "sales", "marketing", "support", "bpo", "telecaller",
		},
		SkillWeight:            80,
		TitleBonus:             20,
		TitleBonusAny:          []string{"python", "react", "developer", "engineer"},
		MinScore:               10,
		ExperienceCeilingYears: 1,
	}

	cfg.Sources.Board.Enabled = true
	cfg.Sources.Board.Queries = []string{
		"Junior Python Developer",
		"Junior React Developer",
		"Junior Full Stack Developer",
		"Software Developer Fresher India",
		"Junior Software Engineer",
		"Early Career Software Engineer",
	}
	cfg.Sources.Board.Location = "India"
	cfg.Sources.Board.HoursOld = 24
	cfg.Sources.Board.WidenHoursOld = 36

	cfg.Sources.Email.Mailbox = "INBOX"
	cfg.Sources.Email.IMAPPort = 993
	cfg.Sources.Email.MaxMessages = 50

	cfg.Notify.SMTPHost = "smtp.gmail.com"
	cfg.Notify.SMTPPort = 587
	cfg.Notify.WindowHourUTC = -1

	return cfg
}
