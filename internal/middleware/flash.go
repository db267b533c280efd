package middleware

import "github.com/gofiber/fiber/v2"

const flashesKey = "_flashes"

// AddFlash queues a one-time message for the next rendered page.
func AddFlash(c *fiber.Ctx, msg string) {
	if msg == "" {
		return
	}
	data := sessionData(c)
	data[flashesKey] = append(flashList(data[flashesKey]), msg)
	markDirty(c)
}

// PopFlashes returns and clears the queued messages.
func PopFlashes(c *fiber.Ctx) []string {
	data := sessionData(c)
	msgs := flashList(data[flashesKey])
	if len(msgs) == 0 {
		return nil
	}
	delete(data, flashesKey)
	markDirty(c)
	return msgs
}

// flashList accepts both the in-request []string and the []interface{} that comes
// back from JSON.
func flashList(v interface{}) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []interface{}:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
