package public

import (
	"context"

	"slackvite/internal/application/applications"
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"
	"slackvite/internal/interfaces/views"
	"slackvite/internal/middleware"
	"slackvite/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Submitter stores a join request.
type Submitter interface {
	Submit(ctx context.Context, in applications.SubmitInput, team *slack.Team) (*domain.Application, error)
}

// Handlers serves the public join form.
type Handlers struct {
	Applications Submitter
	Site         views.Site
}

// Index GET /.
func (h *Handlers) Index(c *fiber.Ctx) error {
	page, err := middleware.PageData(c, h.Site)
	if err != nil {
		return err
	}
	return views.Render(c, fiber.StatusOK, views.IndexPage(page, views.ApplicationForm{}, nil))
}

// Submit POST /. Blank fields re-render the form with 400; storage errors (such as a
// duplicate email or name) go to the error handler.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	form := views.ApplicationForm{
		Email:  c.FormValue("email"),
		Name:   c.FormValue("name"),
		Reason: c.FormValue("reason"),
	}
	page, err := middleware.PageData(c, h.Site)
	if err != nil {
		return err
	}

	missing := validation.MissingFields(
		validation.Field{Name: "email", Value: form.Email},
		validation.Field{Name: "name", Value: form.Name},
		validation.Field{Name: "reason", Value: form.Reason},
	)
	if len(missing) > 0 {
		return views.Render(c, fiber.StatusBadRequest, views.IndexPage(page, form, missing))
	}

	app, err := h.Applications.Submit(c.UserContext(), applications.SubmitInput{
		Email:  form.Email,
		Name:   form.Name,
		Reason: form.Reason,
	}, page.Team)
	if err != nil {
		return err
	}
	return views.Render(c, fiber.StatusOK, views.AppliedPage(page, app))
}
