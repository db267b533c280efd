package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the traffic counters read by /health/json and cleared by /health/reset.
const (
	KeyReqTotal  = "slackvite:health:req_total"
	KeyReqErrors = "slackvite:health:req_errors"
	KeyResTime   = "slackvite:health:res_time_total"
	KeyResCount  = "slackvite:health:res_count"
	KeyStartTime = "slackvite:health:start_time"
	KeyLastReq   = "slackvite:health:last_request"
	KeyErrorLog  = "slackvite:health:error_log"
)

// StatsKeys are the keys cleared by a stats reset.
var StatsKeys = []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog}

// HealthMarker records request stats in Redis, skipping health and static paths.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		ctx := context.Background()
		_ = rdb.Set(ctx, KeyLastReq, b, 0).Err()
		_ = rdb.Incr(ctx, KeyReqTotal).Err()

		err := c.Next()

		_ = rdb.Incr(ctx, KeyResCount).Err()
		_ = rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds())).Err()
		if serverFailure(c, err) {
			_ = rdb.Incr(ctx, KeyReqErrors).Err()
		}
		return err
	}
}

// serverFailure reports whether the request ended in a 5xx. Returned errors have not
// reached the error handler yet, so their code is read from the error itself.
func serverFailure(c *fiber.Ctx, err error) bool {
	if err == nil {
		return c.Response().StatusCode() >= fiber.StatusInternalServerError
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code >= fiber.StatusInternalServerError
	}
	return true
}
