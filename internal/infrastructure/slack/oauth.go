package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const authorizeURL = "https://slack.com/oauth/authorize"

// OAuth exchanges "Sign in with Slack" authorization codes and resolves the caller.
type OAuth struct {
	Config  *oauth2.Config
	BaseURL string
	Client  *http.Client
}

// NewOAuth builds the identity-provider adapter for a Slack app.
func NewOAuth(clientID, clientSecret, redirectURL, baseURL string) *OAuth {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &OAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identity.basic"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authorizeURL,
				TokenURL:  baseURL + "/oauth.access",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		BaseURL: baseURL,
	}
}

// AuthCodeURL is the link the sign-in button points at.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a user access token.
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("slack oauth: empty authorization code")
	}
	if o.Client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.Client)
	}
	tok, err := o.Config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("slack oauth.access: %w", err)
	}
	return tok.AccessToken, nil
}

// Identity resolves the user and team behind an access token.
func (o *OAuth) Identity(ctx context.Context, accessToken string) (*Identity, error) {
	c := &Client{Token: accessToken, BaseURL: o.BaseURL, Client: o.Client}
	return c.Identity(ctx)
}
