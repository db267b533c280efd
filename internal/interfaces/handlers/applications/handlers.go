package applications

import (
	"context"
	"errors"
	"strconv"

	appsvc "slackvite/internal/application/applications"
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"
	"slackvite/internal/interfaces/views"
	"slackvite/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Service is the admin side of the workflow.
type Service interface {
	List(ctx context.Context, state domain.State) ([]domain.Application, error)
	Decide(ctx context.Context, in appsvc.DecideInput, team *slack.Team) (string, error)
}

// Handlers serves the admin console. All routes require a logged-in member.
type Handlers struct {
	Service Service
	Site    views.Site
}

// List GET /applications and /applications/:state. Unknown states match nothing.
func (h *Handlers) List(c *fiber.Ctx) error {
	state, ok := domain.ParseState(c.Params("state"))
	if !ok {
		state = domain.State(c.Params("state"))
	}
	apps, err := h.Service.List(c.UserContext(), state)
	if err != nil {
		return err
	}
	page, err := middleware.PageData(c, h.Site)
	if err != nil {
		return err
	}
	return views.Render(c, fiber.StatusOK, views.ApplicationsPage(page, state, apps))
}

// Decide POST /applications with form fields id and action.
func (h *Handlers) Decide(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.FormValue("id"), 10, 64)
	if err != nil || id == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid application id")
	}
	team, err := middleware.CurrentTeam(c)
	if err != nil {
		return err
	}

	notice, err := h.Service.Decide(c.UserContext(), appsvc.DecideInput{
		ID:     uint(id),
		Action: c.FormValue("action"),
	}, team)
	if errors.Is(err, appsvc.ErrApplicationNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}

	if m := middleware.CurrentMember(c); m != nil {
		log.Info().Uint("application_id", uint(id)).Uint("member_id", m.ID).Str("action", c.FormValue("action")).Msg("application decided")
	}
	middleware.AddFlash(c, notice)
	return c.Redirect("/applications", fiber.StatusSeeOther)
}
