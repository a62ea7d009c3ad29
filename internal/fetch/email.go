package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobfeed-engine/internal/domain"
)

// EmailConfig describes a job-alert inbox. The password is resolved by
// the caller (keychain or env), never read from the config file.
type EmailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Mailbox     string
	SubjectAny  []string
	MaxMessages int
}

// EmailFetcher pulls job-alert messages over IMAP and extracts the
// listing links they carry.
type EmailFetcher struct {
	cfg EmailConfig
}

func NewEmail(cfg EmailConfig) *EmailFetcher {
	return &EmailFetcher{cfg: cfg}
}

func (e *EmailFetcher) Name() string { return "email" }

var (
	urlRe  = regexp.MustCompile(`https?://[^\s<>"']+`)
	tagsRe = regexp.MustCompile(`(?s)<[^>]*>`)
)

func (e *EmailFetcher) Fetch(ctx context.Context) ([]domain.RawListing, error) {
	if e.cfg.Host == "" || e.cfg.Username == "" {
		return nil, errors.New("email fetcher missing imap host/username")
	}
	if e.cfg.Password == "" {
		return nil, errors.New("email fetcher missing password")
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: e.cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}
	defer c.Close()

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(e.cfg.Username, e.cfg.Password).Wait(); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	defer func() { _ = c.Logout().Wait() }()

	mailbox := e.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	// alert mails older than two days carry listings the pruner would
	// evict anyway
	criteria := &imap.SearchCriteria{
		Since: time.Now().Add(-48 * time.Hour),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	maxMsgs := e.cfg.MaxMessages
	if maxMsgs <= 0 {
		maxMsgs = 50
	}
	if len(uids) > maxMsgs {
		uids = uids[:maxMsgs]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var out []domain.RawListing
	for {
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return out, fmt.Errorf("imap fetch collect: %w", err)
		}

		subject := ""
		if buf.Envelope != nil {
			subject = strings.TrimSpace(buf.Envelope.Subject)
		}
		if !e.subjectMatches(subject) {
			continue
		}

		body := buf.FindBodySection(bodyAll)
		if body == nil {
			continue
		}
		out = append(out, listingsFromAlert(subject, string(body))...)
	}
	if err := fetchCmd.Close(); err != nil {
		return out, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func (e *EmailFetcher) subjectMatches(subject string) bool {
	if len(e.cfg.SubjectAny) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, needle := range e.cfg.SubjectAny {
		if strings.Contains(s, strings.ToLower(strings.TrimSpace(needle))) {
			return true
		}
	}
	return false
}

// listingsFromAlert extracts listing links from an alert body. The alert
// subject stands in for the title; the normalizer defaults the rest.
func listingsFromAlert(subject, rawBody string) []domain.RawListing {
	text := htmlToText(rawBody)

	seen := map[string]bool{}
	var out []domain.RawListing
	for _, link := range urlRe.FindAllString(rawBody, -1) {
		link = strings.TrimRight(link, ".,;)")
		if skipAlertLink(link) || seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, domain.RawListing{
			Title:       subject,
			Description: text,
			URL:         link,
			SourceSite:  "email",
		})
	}
	return out
}

func skipAlertLink(link string) bool {
	l := strings.ToLower(link)
	return strings.Contains(l, "unsubscribe") ||
		strings.Contains(l, "/settings") ||
		strings.Contains(l, "mailto:") ||
		strings.Contains(l, "/help/")
}

func htmlToText(s string) string {
	s = tagsRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
