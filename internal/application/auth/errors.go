package auth

import "errors"

var (
	ErrTeamMismatch   = errors.New("Identity belongs to a different Slack team")
	ErrInactiveMember = errors.New("Membership is not active")
	ErrNotLoggedIn    = errors.New("Not authenticated")
)
