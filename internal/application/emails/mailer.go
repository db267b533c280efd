package emails

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.eml
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.eml"))

// Template names.
const (
	TemplateRejected = "rejected.eml"
	TemplateApproved = "approved.eml"
)

// Message is one outbound plain-text email.
type Message struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	Text     string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders named templates and hands them to a Sender. Email is off unless
// both a sender address and a transport are configured; a nil Mailer is off too.
type Mailer struct {
	Sender   Sender
	From     string
	FromName string
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.From != "" && m.Sender != nil
}

// Render executes a named template with data bound as its context.
func Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Send renders template name and sends it to the recipient. It does nothing when
// email is disabled.
func (m *Mailer) Send(ctx context.Context, to, toName, subject, name string, data interface{}) error {
	if !m.Enabled() {
		return nil
	}
	body, err := Render(name, data)
	if err != nil {
		return err
	}
	log.Info().Str("template", name).Str("to", to).Msg("sending email")
	return m.Sender.Send(ctx, Message{
		From:     m.From,
		FromName: m.FromName,
		To:       to,
		ToName:   toName,
		Subject:  subject,
		Text:     body,
	})
}
