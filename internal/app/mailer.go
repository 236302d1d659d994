package app

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Email 一封单收件人的报告邮件。
type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPMailer 每封邮件单独建连接发送。
type SMTPMailer struct {
	Server   string
	Port     int
	TLS      bool
	Login    string
	Password string
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	msg := mail.NewMsg()
	if err := msg.From(e.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", e.From, err)
	}
	if err := msg.To(e.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", e.To, err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.Text)
	if e.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	}

	opts := []mail.Option{mail.WithPort(m.Port)}
	if m.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.Login != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Login),
			mail.WithPassword(m.Password))
	}

	client, err := mail.NewClient(m.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}
