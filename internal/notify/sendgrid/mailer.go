package sendgrid

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SergioZanela/ecommerce-project/internal/notify"
)

// Mailer implements notify.Mailer on top of SendGrid.
type Mailer struct {
	apiKey   string
	from     string
	fromName string
}

func NewMailer(apiKey, from, fromName string) *Mailer {
	return &Mailer{apiKey: apiKey, from: from, fromName: fromName}
}

func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient address is empty")
	}

	email := mail.NewV3Mail()
	email.SetFrom(mail.NewEmail(m.fromName, m.from))
	email.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	email.AddPersonalizations(p)

	email.AddContent(mail.NewContent("text/plain", msg.Body))

	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetType(att.ContentType)
		a.SetDisposition("attachment")
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		email.AddAttachment(a)
	}

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
