package emails

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient sends plain-text emails through SendGrid.
type SendGridClient struct {
	APIKey string
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	client := sendgrid.NewSendClient(c.APIKey)
	resp, err := client.SendWithContext(ctx, sendGridMail(msg))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func sendGridMail(msg Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.FromName, msg.From))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.Text))
	return m
}
