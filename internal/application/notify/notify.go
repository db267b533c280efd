package notify

import (
	"context"
	"fmt"

	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"

	"github.com/rs/zerolog/log"
)

const (
	botName  = "Slackvite"
	botEmoji = ":wave:"
)

// Chat is the part of the Slack admin client the notifier needs.
type Chat interface {
	PostMessage(ctx context.Context, msg slack.Message) error
	InviteUser(ctx context.Context, teamDomain, email string) error
}

// Notifier posts application events to the admin channel and sends workspace invites.
type Notifier struct {
	Chat    Chat
	Channel string
}

// ApplicationReceived announces a new join request with its details.
func (n *Notifier) ApplicationReceived(ctx context.Context, app *domain.Application, team *slack.Team) error {
	summary := fmt.Sprintf("New invite application from %s", app.Name)
	return n.post(ctx, app, slack.Message{
		Channel:   n.Channel,
		Text:      summary,
		Username:  botName,
		IconEmoji: botEmoji,
		Attachments: []slack.Attachment{{
			Fallback: summary,
			Text:     fmt.Sprintf("%s has applied to join the %s slack", app.Name, team.Name),
			Fields: []slack.Field{
				{Title: "Name", Value: app.Name, Short: true},
				{Title: "E-mail", Value: app.Email, Short: true},
				{Title: "Reason", Value: app.Reason, Short: false},
			},
		}},
	})
}

func (n *Notifier) ApplicationRejected(ctx context.Context, app *domain.Application, team *slack.Team) error {
	return n.post(ctx, app, slack.Message{
		Channel: n.Channel,
		Text:    fmt.Sprintf("Invite application from %s was rejected", app.Name),
		Attachments: []slack.Attachment{{
			Fallback: fmt.Sprintf("Invite application from %s was rejected.", app.Name),
			Text:     fmt.Sprintf("Invite application from %s to join the %s slack was rejected.", app.Name, team.Name),
		}},
	})
}

func (n *Notifier) ApplicationApproved(ctx context.Context, app *domain.Application, team *slack.Team) error {
	return n.post(ctx, app, slack.Message{
		Channel: n.Channel,
		Text:    fmt.Sprintf("Invite application from %s was approved!", app.Name),
		Attachments: []slack.Attachment{{
			Fallback: fmt.Sprintf("Invite application from %s was approved!", app.Name),
			Text:     fmt.Sprintf("Invite application from %s to join the %s slack was approved!", app.Name, team.Name),
		}},
	})
}

// Invite asks Slack to invite the applicant to team, activating the account on accept.
// An already_invited response is returned as-is; check it with slack.IsAlreadyInvited.
func (n *Notifier) Invite(ctx context.Context, app *domain.Application, team *slack.Team) error {
	log.Info().Uint("application_id", app.ID).Str("email", app.Email).Str("team", team.Domain).Msg("sending slack invite")
	return n.Chat.InviteUser(ctx, team.Domain, app.Email)
}

func (n *Notifier) post(ctx context.Context, app *domain.Application, msg slack.Message) error {
	log.Info().Uint("application_id", app.ID).Str("state", string(app.State)).Str("channel", msg.Channel).Msg("posting admin notification")
	return n.Chat.PostMessage(ctx, msg)
}
