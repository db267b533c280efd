package middleware

import (
	"slackvite/internal/interfaces/views"

	"github.com/gofiber/fiber/v2"
)

// PageData assembles the layout data for a request. Reading it pops the flashes.
func PageData(c *fiber.Ctx, site views.Site) (views.Page, error) {
	team, err := CurrentTeam(c)
	if err != nil {
		return views.Page{}, err
	}
	return views.Page{
		Site:    site,
		Team:    team,
		Member:  CurrentMember(c),
		Flashes: PopFlashes(c),
	}, nil
}
