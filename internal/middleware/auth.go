package middleware

import (
	"context"
	"errors"

	"slackvite/internal/application/auth"
	"slackvite/internal/domain"

	"github.com/gofiber/fiber/v2"
)

const memberLocal = "member"

// MemberLoader resolves the session's member id to a logged-in Member.
type MemberLoader interface {
	CurrentMember(ctx context.Context, id uint) (*domain.Member, error)
}

// LoadMember attaches the session's Member when there is one; anonymous requests pass
// through unchanged.
func LoadMember(loader MemberLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := SessionMemberID(c); id != 0 {
			m, err := loader.CurrentMember(c.UserContext(), id)
			if err != nil && !errors.Is(err, auth.ErrNotLoggedIn) {
				return err
			}
			if m != nil {
				c.Locals(memberLocal, m)
			}
		}
		return c.Next()
	}
}

// RequireAuth rejects requests without a logged-in, active, Slack-bound Member.
func RequireAuth(loader MemberLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentMember(c) != nil {
			return c.Next()
		}
		m, err := loader.CurrentMember(c.UserContext(), SessionMemberID(c))
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return fiber.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		c.Locals(memberLocal, m)
		return c.Next()
	}
}

// CurrentMember returns the Member set by RequireAuth (nil if not logged in).
func CurrentMember(c *fiber.Ctx) *domain.Member {
	m, _ := c.Locals(memberLocal).(*domain.Member)
	return m
}
