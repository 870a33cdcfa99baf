package events

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// DefaultNotifyEvents are the events operators are mailed about.
var DefaultNotifyEvents = []string{"CampaignCreated", "TokensWithdrawn"}

// EmailAPI is the part of the resend client the notifier uses.
type EmailAPI interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// NewResendEmails returns the resend email service for apiKey.
func NewResendEmails(apiKey string) EmailAPI {
	return resend.NewClient(apiKey).Emails
}

var notificationTemplate = template.Must(template.New("events").Parse(`<h2>Airdrop activity on chain {{.ChainID}}</h2>
<table>
<tr><th>#</th><th>Event</th><th>Contract</th><th>Payload</th></tr>
{{range .Records}}<tr><td>{{.Index}}</td><td>{{.Name}}</td><td>{{.Contract.Hex}}</td><td><code>{{printf "%s" .Payload}}</code></td></tr>
{{end}}</table>`))

// EmailNotifier mails a summary of selected events to operators.
type EmailNotifier struct {
	emails EmailAPI
	from   string
	to     []string
	names  map[string]bool
	log    *logger.StructuredLogger
}

// NewEmailNotifier mails records named in names, or DefaultNotifyEvents when
// names is empty.
func NewEmailNotifier(emails EmailAPI, from string, to []string, names ...string) *EmailNotifier {
	if len(names) == 0 {
		names = DefaultNotifyEvents
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &EmailNotifier{
		emails: emails,
		from:   from,
		to:     to,
		names:  set,
		log:    logger.NewStructuredLogger(logger.ComponentEvents).WithField("publisher", "email"),
	}
}

// Publish implements Publisher. One email covers every selected record in
// the batch.
func (n *EmailNotifier) Publish(ctx context.Context, records []Record) error {
	selected := make([]Record, 0, len(records))
	for _, r := range records {
		if n.names[r.Name] {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, struct {
		ChainID int64
		Records []Record
	}{selected[0].ChainID, selected}); err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	subject := fmt.Sprintf("[airdrop] %s", selected[0].Name)
	if len(selected) > 1 {
		subject = fmt.Sprintf("[airdrop] %s and %d more", selected[0].Name, len(selected)-1)
	}

	sent, err := n.emails.Send(&resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Html:    body.String(),
		Headers: map[string]string{"X-Entity-Ref-ID": selected[0].ID.String()},
		Tags: []resend.Tag{
			{Name: "category", Value: "airdrop_events"},
		},
	})
	if err != nil {
		n.log.Error("Failed to send event notification", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.WithFields(map[string]interface{}{
		"email_id": sent.Id,
		"to":       n.to,
		"events":   len(selected),
	}).Info("Event notification sent")
	return nil
}
