package adapter

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type MailMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// MailAdapter delivers one email. Delivery is best effort: callers log a
// failure but never let it change job state.
type MailAdapter interface {
	Send(ctx context.Context, msg MailMessage) error
}
