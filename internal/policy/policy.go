package policy

import (
	"fmt"
	"strings"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/domain"
)

// Evaluate maps a raw listing plus a policy to a verdict. Pure: no clock,
// no I/O, identical inputs always yield identical verdicts.
//
// Blacklist and experience checks short-circuit before scoring and are
// absolute; no score can overrule them.
func Evaluate(pol config.Policy, raw domain.RawListing) domain.Analysis {
	title := strings.ToLower(raw.Title)
	company := strings.ToLower(raw.Company)
	desc := strings.ToLower(raw.Description)

	for _, blocked := range pol.BlacklistedCompanies {
		if containsFold(company, blocked) {
			return domain.Analysis{Suitable: false, Reason: "blacklisted company: " + blocked}
		}
	}
	for _, blocked := range pol.BlacklistedTitles {
		if containsFold(title, blocked) {
			return domain.Analysis{Suitable: false, Reason: "blacklisted title: " + blocked}
		}
	}
	for _, blocked := range pol.BlacklistedKeywords {
		if containsFold(title, blocked) || containsFold(desc, blocked) {
			return domain.Analysis{Suitable: false, Reason: "contains " + blocked}
		}
	}

	if pol.ExperienceCeilingYears > 0 {
		if years, ok := MinYearsRequired(desc); ok && years > pol.ExperienceCeilingYears {
			return domain.Analysis{
				Suitable: false,
				Reason:   fmt.Sprintf("requires %d+ years experience", years),
			}
		}
	}

	matched := 0
	for _, skill := range pol.SkillsOwned {
		if containsFold(desc, skill) {
			matched++
		}
	}
	score := matched * pol.SkillWeight / max(len(pol.SkillsOwned), 1)

	for _, kw := range pol.TitleBonusAny {
		if containsFold(title, kw) {
			score += pol.TitleBonus
			break
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	if score < pol.MinScore {
		return domain.Analysis{Suitable: false, Score: score, Reason: "low match"}
	}

	return domain.Analysis{
		Suitable:     true,
		Score:        score,
		ShareMessage: fmt.Sprintf("Check out this %s at %s", raw.Title, raw.Company),
	}
}

func containsFold(haystack, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}
