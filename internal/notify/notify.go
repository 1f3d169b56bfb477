// Package notify delivers the run report by email: text body, HTML
// alternative and the CSV export attached. Message assembly is
// separate from dialing so tests can render a message without an SMTP
// server.
package notify

import (
	"fmt"
	"io"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/augustosouza8/aplicativos-sei/internal/report"
)

// Mailer holds the SMTP endpoint and the envelope. Username and
// Password may be empty for servers that accept unauthenticated
// relay on the local network.
type Mailer struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	To            []string
	SubjectPrefix string
}

// Compose renders the report into a ready-to-send message.
func (m *Mailer) Compose(r *report.Report) (*gomail.Message, error) {
	text := report.Text(r)
	html, err := report.HTML(r)
	if err != nil {
		return nil, fmt.Errorf("compose report email: %w", err)
	}
	csvData, err := report.CSV(r)
	if err != nil {
		return nil, fmt.Errorf("compose report email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.subject(r))
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)
	msg.Attach(report.Filename(r), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(csvData)
		return err
	}))
	return msg, nil
}

func (m *Mailer) subject(r *report.Report) string {
	subject := report.Subject(r)
	if m.SubjectPrefix != "" {
		subject = m.SubjectPrefix + " " + subject
	}
	return subject
}

// Send composes and delivers the report. The dialer negotiates
// STARTTLS when the server offers it.
func (m *Mailer) Send(r *report.Report) error {
	msg, err := m.Compose(r)
	if err != nil {
		return err
	}

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	slog.Info("report email sent",
		"host", m.Host,
		"recipients", len(m.To),
		"subject", m.subject(r))
	return nil
}
