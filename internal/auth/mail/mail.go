// Package mail is the out-of-band delivery collaborator. The auth core only
// depends on the Mailer interface; the SMTP implementation below is the
// shipped integration.
package mail

import (
	"context"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a message or reports a fault. A fault on the reset-email path
// triggers rollback of the reset-token fields set earlier in the operation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send dials the relay and sends one plain-text message. gomail has no
// context plumbing; the ctx parameter keeps the interface uniform with the
// rest of the I/O boundaries.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(gm)
}
