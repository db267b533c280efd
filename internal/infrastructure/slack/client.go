package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
)

const DefaultAPIURL = "https://slack.com/api"

// ErrCodeAlreadyInvited is returned by users.admin.invite for an address with a pending invite.
const ErrCodeAlreadyInvited = "already_invited"

// APIError is a Slack Web API response with ok=false.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

// IsAlreadyInvited reports whether err is the already_invited API error.
func IsAlreadyInvited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrCodeAlreadyInvited
	}
	var slackErr slackapi.SlackErrorResponse
	return errors.As(err, &slackErr) && slackErr.Err == ErrCodeAlreadyInvited
}

// Team is the subset of team.info we use.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Identity is the users.identity response for a user token.
type Identity struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Team struct {
		ID string `json:"id"`
	} `json:"team"`
}

// Field is one attachment field.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Attachment is a legacy message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
}

// Message is a chat.postMessage request.
type Message struct {
	Channel     string
	Text        string
	Username    string
	IconEmoji   string
	Attachments []Attachment
}

var defaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

// Client calls the Slack Web API with a single token.
type Client struct {
	Token   string
	BaseURL string
	Client  *http.Client
}

func (c *Client) api() *slackapi.Client {
	base := DefaultAPIURL
	if c.BaseURL != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}
	hc := c.Client
	if hc == nil {
		hc = defaultHTTPClient
	}
	return slackapi.New(c.Token, slackapi.OptionAPIURL(base+"/"), slackapi.OptionHTTPClient(hc))
}

// apiError turns an ok=false response into an *APIError naming the method.
func apiError(method string, err error) error {
	if err == nil {
		return nil
	}
	var slackErr slackapi.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &APIError{Method: method, Code: slackErr.Err}
	}
	return fmt.Errorf("slack %s: %w", method, err)
}

// TeamInfo returns the team the client token belongs to.
func (c *Client) TeamInfo(ctx context.Context) (*Team, error) {
	info, err := c.api().GetTeamInfoContext(ctx)
	if err != nil {
		return nil, apiError("team.info", err)
	}
	return &Team{ID: info.ID, Name: info.Name, Domain: info.Domain}, nil
}

// PostMessage posts to a channel as a bot-style user (as_user=false).
func (c *Client) PostMessage(ctx context.Context, msg Message) error {
	opts := []slackapi.MsgOption{
		slackapi.MsgOptionText(msg.Text, false),
		slackapi.MsgOptionAsUser(false),
	}
	if msg.Username != "" {
		opts = append(opts, slackapi.MsgOptionUsername(msg.Username))
	}
	if msg.IconEmoji != "" {
		opts = append(opts, slackapi.MsgOptionIconEmoji(msg.IconEmoji))
	}
	if len(msg.Attachments) > 0 {
		atts := make([]slackapi.Attachment, 0, len(msg.Attachments))
		for _, a := range msg.Attachments {
			fields := make([]slackapi.AttachmentField, 0, len(a.Fields))
			for _, f := range a.Fields {
				fields = append(fields, slackapi.AttachmentField{Title: f.Title, Value: f.Value, Short: f.Short})
			}
			atts = append(atts, slackapi.Attachment{Fallback: a.Fallback, Text: a.Text, Fields: fields})
		}
		opts = append(opts, slackapi.MsgOptionAttachments(atts...))
	}
	_, _, err := c.api().PostMessageContext(ctx, msg.Channel, opts...)
	return apiError("chat.postMessage", err)
}

// InviteUser sends a workspace invitation through users.admin.invite on the team's
// own host. The account is activated when the invite is accepted.
func (c *Client) InviteUser(ctx context.Context, teamDomain, email string) error {
	return apiError("users.admin.invite", c.api().InviteToTeamContext(ctx, teamDomain, "", "", email))
}

// Identity returns the user and team behind a user token (users.identity).
func (c *Client) Identity(ctx context.Context) (*Identity, error) {
	resp, err := c.api().GetUserIdentityContext(ctx)
	if err != nil {
		return nil, apiError("users.identity", err)
	}
	out := &Identity{}
	out.User.ID = resp.User.ID
	out.User.Name = resp.User.Name
	out.Team.ID = resp.Team.ID
	return out, nil
}

// Ping calls auth.test; used by the health report.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api().AuthTestContext(ctx)
	return apiError("auth.test", err)
}
