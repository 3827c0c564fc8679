package mail

import (
	"context"
	"io"

	"gopkg.in/gomail.v2"

	"evalplanner-jobs/internal/config"
	"evalplanner-jobs/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.MailAdapter = (*SMTPMailAdapter)(nil)

// SMTPMailAdapter delivers mail over SMTP. Attachments are written from
// memory; nothing touches disk.
type SMTPMailAdapter struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailAdapter(cfg config.MailConfig) *SMTPMailAdapter {
	return &SMTPMailAdapter{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (a *SMTPMailAdapter) Send(ctx context.Context, msg adapter.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, att := range msg.Attachments {
		content := att.Content
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
		)
	}

	return a.dialer.DialAndSend(m)
}
