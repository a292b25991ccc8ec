package worker

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"innbook/internal/config"
	"innbook/internal/events"
)

// SMTPMailer delivers notifications over plain SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

var (
	createdTemplate = template.Must(template.New("created").Parse(
		`Hello {{.GuestName}},

Your reservation is confirmed.

  Unit:      {{.UnitName}}
  Check-in:  {{.CheckIn.Format "2006-01-02"}}
  Check-out: {{.CheckOut.Format "2006-01-02"}}

Reservation #{{.ReservationID}}.
`))

	updatedTemplate = template.Must(template.New("updated").Parse(
		`Hello {{.GuestName}},

Your reservation #{{.ReservationID}} has been updated.

  Unit:      {{.UnitName}}
  Check-in:  {{.CheckIn.Format "2006-01-02"}}
  Check-out: {{.CheckOut.Format "2006-01-02"}}
`))

	cancelledTemplate = template.Must(template.New("cancelled").Parse(
		`Hello {{.GuestName}},

Your reservation #{{.ReservationID}} for {{.UnitName}} ({{.CheckIn.Format "2006-01-02"}} to {{.CheckOut.Format "2006-01-02"}}) has been cancelled.
`))
)

// renderNotification picks the subject and body for a task type.
func renderNotification(taskType string, payload events.ReservationEventPayload) (subject, body string, err error) {
	var tmpl *template.Template
	switch taskType {
	case TaskReservationCreated:
		subject = fmt.Sprintf("Reservation confirmed: %s", payload.UnitName)
		tmpl = createdTemplate
	case TaskReservationUpdated:
		subject = fmt.Sprintf("Reservation updated: %s", payload.UnitName)
		tmpl = updatedTemplate
	case TaskReservationCancelled:
		subject = fmt.Sprintf("Reservation cancelled: %s", payload.UnitName)
		tmpl = cancelledTemplate
	default:
		return "", "", fmt.Errorf("unknown task type: %s", taskType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", "", fmt.Errorf("render %s notification: %w", taskType, err)
	}
	return subject, buf.String(), nil
}
