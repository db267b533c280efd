package middleware

import (
	"errors"

	"slackvite/internal/infrastructure/slack"

	"github.com/gofiber/fiber/v2"
)

const teamLocal = "slack_team"

var errNoTeamScope = errors.New("team lookup not configured for this route")

// TeamScope gives each request its own lazily fetched copy of the admin team.
func TeamScope(source slack.TeamSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(teamLocal, slack.NewTeamLookup(source))
		return c.Next()
	}
}

// CurrentTeam fetches the team on first call within a request.
func CurrentTeam(c *fiber.Ctx) (*slack.Team, error) {
	l, ok := c.Locals(teamLocal).(*slack.TeamLookup)
	if !ok {
		return nil, errNoTeamScope
	}
	return l.Get(c.UserContext())
}
