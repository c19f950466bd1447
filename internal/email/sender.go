package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
)

type Sender interface {
	Send(to string, subject string, body string) error
}

// SMTPSender delivers mail over unauthenticated SMTP (dev relays such as
// Mailpit).
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host, port, from string) *SMTPSender {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@booking.local"
	}
	return &SMTPSender{
		addr: strings.TrimSpace(host) + ":" + strings.TrimSpace(port),
		from: from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body,
	)
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}

// LogSender stands in when no SMTP relay is configured: it logs what would
// have been sent instead of sending it.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Send(to, subject, body string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("email disabled; reminder would be sent",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}

// ReminderMessage renders the reminder subject and body for a booking.
func ReminderMessage(a domain.Appointment) (subject, body string) {
	subject = "Reminder: " + a.Title
	body = fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder for your appointment %q on %s at %s.\n\nSee you there!\n",
		a.FirstName, a.Title, a.Date, a.Time,
	)
	return subject, body
}
