package mail

import (
	"context"

	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.MailAdapter = (*NoopMailAdapter)(nil)

// NoopMailAdapter logs what would have been sent. Selected when no SMTP host
// is configured, mirroring the mock sender in development environments.
type NoopMailAdapter struct {
	log *zerolog.Logger
}

func NewNoopMailAdapter(logger *zerolog.Logger) *NoopMailAdapter {
	return &NoopMailAdapter{log: logger}
}

func (n *NoopMailAdapter) Send(ctx context.Context, msg adapter.MailMessage) error {
	n.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("MOCK EMAIL - would send")
	return nil
}
