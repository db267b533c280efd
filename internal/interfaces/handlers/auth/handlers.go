package auth

import (
	"context"
	"errors"
	"fmt"

	authsvc "slackvite/internal/application/auth"
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"
	"slackvite/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// LoginService binds an OAuth code to a Member.
type LoginService interface {
	Login(ctx context.Context, code string, team *slack.Team) (*domain.Member, error)
}

// Handlers holds dependencies for the login endpoints.
type Handlers struct {
	Service LoginService
}

// OAuth GET /oauth is the Slack redirect target. Known failures are flashed on the
// start page; anything else goes to the error handler.
func (h *Handlers) OAuth(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		middleware.AddFlash(c, "You denied the request to login")
		return c.Redirect("/")
	}
	team, err := middleware.CurrentTeam(c)
	if err != nil {
		return err
	}

	member, err := h.Service.Login(c.UserContext(), code, team)
	switch {
	case errors.Is(err, authsvc.ErrTeamMismatch):
		middleware.AddFlash(c, fmt.Sprintf("You did not login with the %s slack team.", team.Name))
		return c.Redirect("/")
	case errors.Is(err, authsvc.ErrInactiveMember):
		middleware.AddFlash(c, "Your membership is not active.")
		return c.Redirect("/")
	case err != nil:
		return err
	}

	middleware.RegenerateSessionID(c)
	middleware.SetSessionMember(c, member.ID)
	log.Info().Uint("member_id", member.ID).Str("trace_id", middleware.GetTraceID(c)).Msg("member logged in")
	return c.Redirect("/applications")
}

// Logout GET /logout ends the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	middleware.DestroySession(c)
	return c.Redirect("/")
}
