package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/adapter"
	"evalplanner-jobs/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase sends the one terminal email for a finished job. The
// job's terminal state is authoritative; a delivery failure is logged and
// counted but never re-opens or re-fails the job.
type NotificationUseCase interface {
	SendResult(ctx context.Context, job *model.Job) error
}

type notificationUC struct {
	mailer  adapter.MailAdapter
	support string
	log     *zerolog.Logger
}

func NewNotificationUseCase(mailer adapter.MailAdapter, support string, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{mailer: mailer, support: support, log: logger}
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (n *notificationUC) SendResult(ctx context.Context, job *model.Job) error {
	program := metadataOr(job, "program_name", "your program")
	org := metadataOr(job, "organization_name", "your organization")

	var msg adapter.MailMessage
	msg.To = job.Email

	if job.Status == model.JobStatusCompleted {
		html, err := renderReport(job.Result)
		if err != nil {
			// Fall back to the raw text; the plan is still delivered.
			n.log.Warn().Err(err).Int64("job_id", job.ID).Msg("report rendering failed, attaching raw text")
			html = []byte("<pre>" + job.Result + "</pre>")
		}
		msg.Subject = fmt.Sprintf("Evaluation Plan for %s - %s", program, org)
		msg.Body = completedBody(program, org, n.support, time.Now())
		msg.Attachments = []adapter.Attachment{{
			Filename:    sanitizeFilename(fmt.Sprintf("%s_%s_Evaluation_Plan.html", org, program)),
			ContentType: "text/html",
			Content:     html,
		}}
	} else {
		msg.Subject = fmt.Sprintf("Evaluation plan for %s could not be generated", program)
		msg.Body = failedBody(program, org, job.Error, n.support)
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		metrics.IncNotification("failed")
		n.log.Error().Err(err).Int64("job_id", job.ID).Str("email", job.Email).Msg("notification send failed")
		return err
	}
	metrics.IncNotification("sent")
	n.log.Info().Int64("job_id", job.ID).Str("email", job.Email).Msg("notification sent")
	return nil
}

func metadataOr(job *model.Job, key, fallback string) string {
	if v, ok := job.Input.Metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}

func completedBody(program, org, support string, now time.Time) string {
	return fmt.Sprintf(`Hello,

Attached is the evaluation plan you requested from the Evaluation Planner.

It is for %s delivered by %s. It was generated on %s.

This is a draft. If it is inaccurate, feel free to re-run the Evaluation Planner with additional useful information in the form.

If you have any questions, contact %s.

Best regards,
Evaluation Planner`, program, org, now.Format("January 2, 2006 at 3:04 PM MST"), support)
}

func failedBody(program, org, errMsg, support string) string {
	return fmt.Sprintf(`Hello,

We were unable to generate the evaluation plan for %s delivered by %s.

Reason: %s

Please try again, or contact %s if the problem persists.

Best regards,
Evaluation Planner`, program, org, errMsg, support)
}

// renderReport converts the markdown plan into a standalone HTML document.
func renderReport(md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, err
	}
	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Evaluation Plan</title></head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("\n</body>\n</html>\n")
	return doc.Bytes(), nil
}

// sanitizeFilename keeps characters that are safe in a mail attachment name.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == '.' || r == '_' || r == '-':
			out = append(out, r)
		}
	}
	return string(out)
}
