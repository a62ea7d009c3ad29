package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"

	"jobfeed-engine/internal/domain"
)

// Digest is what gets announced: how many records merged this run and
// the best of them.
type Digest struct {
	NewCount     int
	Top          []domain.ListingRecord
	DashboardURL string
}

const topMatches = 5

const bodyTemplate = `
<html>
  <body>
    <h2>Job feed update</h2>
    <p><b>{{.NewCount}} new listings</b> passed the filters this run.</p>
    <p><b>Top matches:</b></p>
    <ul>
    {{range .Top}}
      <li><b>{{.Analysis.Score}}% match</b>: <a href="{{.URL}}">{{.Title}}</a> at {{.Company}}</li>
    {{end}}
    </ul>
    {{if .DashboardURL}}<p><a href="{{.DashboardURL}}">Open dashboard</a></p>{{end}}
  </body>
</html>
`

var bodyTmpl = template.Must(template.New("digest").Parse(bodyTemplate))

// Compose renders the digest subject and HTML body. Top records are
// ranked by score and clipped to the five best.
func Compose(d Digest) (subject, body string, err error) {
	top := make([]domain.ListingRecord, len(d.Top))
	copy(top, d.Top)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Analysis.Score > top[j].Analysis.Score
	})
	if len(top) > topMatches {
		top = top[:topMatches]
	}
	d.Top = top

	subject = fmt.Sprintf("%d new job listings found", d.NewCount)

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, d); err != nil {
		return "", "", fmt.Errorf("compose digest: %w", err)
	}
	return subject, buf.String(), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string
}

// Send delivers one HTML message. Failures are the caller's to log; they
// must not fail the run.
func Send(cfg SMTPConfig, subject, body string) error {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", cfg.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	if err := smtp.SendMail(addr, auth, cfg.From, []string{cfg.To}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
