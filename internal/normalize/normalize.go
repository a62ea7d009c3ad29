package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"jobfeed-engine/internal/domain"
)

// Unknown is the sentinel for missing or unparseable source values.
// Display fields never normalize to empty.
const Unknown = "Unknown"

// Record converts a raw listing into a canonical ListingRecord. Total:
// it never fails, absent fields degrade to Unknown. FoundAt and Analysis
// are left zero; the engine stamps the former, the evaluator fills the latter.
func Record(raw domain.RawListing) domain.ListingRecord {
	u := CanonicalURL(raw.URL)
	return domain.ListingRecord{
		ID:         RecordID(u),
		Title:      CleanValue(raw.Title),
		Company:    CleanValue(raw.Company),
		Location:   CleanValue(raw.Location),
		DatePosted: strings.TrimSpace(raw.DatePosted),
		URL:        u,
		SourceSite: CleanValue(raw.SourceSite),
	}
}

// RecordID derives a stable identity from the canonical listing URL.
// SHA-1 so the same URL maps to the same id across runs and processes.
func RecordID(canonicalURL string) string {
	sum := sha1.Sum([]byte("url:" + canonicalURL))
	return hex.EncodeToString(sum[:])
}

// CleanValue collapses whitespace and maps empty or placeholder values
// to the Unknown sentinel.
func CleanValue(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "none") {
		return Unknown
	}
	return s
}

// CanonicalURL lowercases scheme and host, drops the fragment and common
// tracking parameters, and re-encodes the query deterministically so two
// spellings of the same listing URL hash to the same id.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "ref" {
			q.Del(k)
		}
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Signature builds the coarse duplicate-detection key: lowercased,
// trimmed, diacritics folded (title, company) pair.
func Signature(title, company string) string {
	return foldText(title) + "|" + foldText(company)
}

func foldText(s string) string {
	// the separator may not appear inside a field or keys could collide
	// across the title/company boundary
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.TrimSpace(s)
	if out, _, err := transform.String(foldTransformer, s); err == nil {
		s = out
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
