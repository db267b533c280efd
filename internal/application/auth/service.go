package auth

import (
	"context"
	"errors"

	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// IdentityProvider completes "Sign in with Slack".
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (string, error)
	Identity(ctx context.Context, accessToken string) (*slack.Identity, error)
}

// Service binds Slack identities to Members.
type Service struct {
	DB       *gorm.DB
	Provider IdentityProvider
}

// Login exchanges code, checks the identity belongs to team, and creates or refreshes
// the Member for that Slack user. Nothing is written on a team mismatch. An inactive
// Member is refreshed but ErrInactiveMember is returned so the caller refuses the login.
func (s *Service) Login(ctx context.Context, code string, team *slack.Team) (*domain.Member, error) {
	token, err := s.Provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	ident, err := s.Provider.Identity(ctx, token)
	if err != nil {
		return nil, err
	}
	if ident.Team.ID != team.ID {
		log.Info().Str("team_id", ident.Team.ID).Str("expected_team_id", team.ID).Msg("login from foreign team refused")
		return nil, ErrTeamMismatch
	}

	var member domain.Member
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("slack_id = ?", ident.User.ID).First(&member).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Info().Str("slack_id", ident.User.ID).Msg("creating first-time login for member")
			slackID := ident.User.ID
			member = domain.Member{Active: true, SlackID: &slackID}
		case err != nil:
			return err
		}
		teamID := ident.Team.ID
		member.DisplayName = ident.User.Name
		member.SlackAccessToken = &token
		member.SlackTeam = &teamID
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}
	if !member.Active {
		return &member, ErrInactiveMember
	}
	return &member, nil
}

// CurrentMember loads the logged-in Member by id. It fails with ErrNotLoggedIn unless
// the Member exists, is active, and has a Slack identity.
func (s *Service) CurrentMember(ctx context.Context, id uint) (*domain.Member, error) {
	if id == 0 {
		return nil, ErrNotLoggedIn
	}
	var member domain.Member
	if err := s.DB.WithContext(ctx).First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	if !member.Active || !member.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}
	return &member, nil
}
