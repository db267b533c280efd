package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"slackvite/internal/interfaces/views"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorEntry is one record in the Redis error log served by /health/errors.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	TraceID string    `json:"trace_id"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Error   string    `json:"error"`
}

// NewErrorHandler renders the generic error page. Server errors are logged and pushed
// onto the Redis error log; 4xx are rendered without being recorded.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong on our side."

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).
				Str("method", c.Method()).Str("path", c.Path()).Msg("Unhandled error")
			if rdb != nil {
				recordError(rdb, ErrorEntry{
					Time:    time.Now().UTC(),
					TraceID: GetTraceID(c),
					Method:  c.Method(),
					Path:    c.Path(),
					Status:  code,
					Error:   err.Error(),
				})
			}
		}

		return views.Render(c, code, views.ErrorPage(code, message))
	}
}

func recordError(rdb *redis.Client, e ErrorEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("error log write failed")
	}
}
