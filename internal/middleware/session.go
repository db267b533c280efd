package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// SessionConfig for the Redis-backed session and its signed cookie.
type SessionConfig struct {
	Secret       string
	IsProduction bool
}

const (
	SessionCookieName  = "slackvite.sid"
	SessionRedisPrefix = "slackvite:session:"
	sessionMaxAge      = 7 * 24 * time.Hour

	localSessionData      = "session_data"
	localSessionID        = "session_id"
	localSessionStaleID   = "session_stale_id"
	localSessionDirty     = "session_dirty"
	localSessionDestroyed = "session_destroyed"

	memberIDKey = "member_id"
)

// Session loads the session named by the signed cookie from Redis and saves it back
// after the handler when it changed. A session id is only issued once there is
// something to store, so anonymous page views stay cookie-free.
func Session(cfg SessionConfig, rdb *redis.Client) fiber.Handler {
	signer := newCookieSigner(cfg.Secret)
	return func(c *fiber.Ctx) error {
		ctx := context.Background()
		sessionID := signer.verify(c.Cookies(SessionCookieName))

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(ctx, SessionRedisPrefix+sessionID).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				log.Error().Err(err).Msg("session load failed")
				return err
			default:
				if err := json.Unmarshal(b, &data); err != nil {
					log.Warn().Err(err).Str("session_id", sessionID).Msg("discarding unreadable session")
					data = nil
				}
			}
			if data == nil {
				sessionID = ""
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}
		c.Locals(localSessionData, data)
		c.Locals(localSessionID, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if stale, _ := c.Locals(localSessionStaleID).(string); stale != "" {
			_ = rdb.Del(ctx, SessionRedisPrefix+stale).Err()
		}
		sid := GetSessionID(c)
		if destroyed, _ := c.Locals(localSessionDestroyed).(bool); destroyed {
			if sid != "" {
				_ = rdb.Del(ctx, SessionRedisPrefix+sid).Err()
			}
			cookie := SessionCookieConfig(cfg)
			cookie.MaxAge = -1
			cookie.Expires = time.Unix(0, 0)
			c.Cookie(&cookie)
			return nil
		}
		if dirty, _ := c.Locals(localSessionDirty).(bool); !dirty {
			return nil
		}
		updated, _ := c.Locals(localSessionData).(map[string]interface{})
		if sid == "" {
			if len(updated) == 0 {
				return nil
			}
			sid = uuid.New().String()
		}
		b, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
			log.Error().Err(err).Msg("session save failed")
			return err
		}
		cookie := SessionCookieConfig(cfg)
		cookie.Value = signer.sign(sid)
		c.Cookie(&cookie)
		return nil
	}
}

// GetSessionID returns the current session ID from context (empty for a new visitor).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}

func sessionData(c *fiber.Ctx) map[string]interface{} {
	data, _ := c.Locals(localSessionData).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
		c.Locals(localSessionData, data)
	}
	return data
}

func markDirty(c *fiber.Ctx) {
	c.Locals(localSessionDirty, true)
}

// SetSessionMember records the logged-in member. Call RegenerateSessionID first.
func SetSessionMember(c *fiber.Ctx, memberID uint) {
	sessionData(c)[memberIDKey] = strconv.FormatUint(uint64(memberID), 10)
	markDirty(c)
}

// SessionMemberID returns the logged-in member id, or 0.
func SessionMemberID(c *fiber.Ctx) uint {
	s, _ := sessionData(c)[memberIDKey].(string)
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// RegenerateSessionID moves the session to a fresh id; the old Redis key is dropped
// once the request finishes.
func RegenerateSessionID(c *fiber.Ctx) string {
	if old := GetSessionID(c); old != "" {
		c.Locals(localSessionStaleID, old)
	}
	newID := uuid.New().String()
	c.Locals(localSessionID, newID)
	markDirty(c)
	return newID
}

// DestroySession drops the session in Redis and expires the cookie.
func DestroySession(c *fiber.Ctx) {
	c.Locals(localSessionData, make(map[string]interface{}))
	c.Locals(localSessionDestroyed, true)
}

// SessionCookieConfig returns the cookie options used for set and clear.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	return fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: "Lax",
	}
}

// cookieSigner authenticates session ids with a keyed BLAKE2b MAC.
type cookieSigner struct {
	key []byte
}

func newCookieSigner(secret string) cookieSigner {
	sum := blake2b.Sum256([]byte(secret))
	return cookieSigner{key: sum[:]}
}

func (s cookieSigner) mac(id string) string {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// Only possible with a key over 64 bytes; ours is always 32.
		panic(err)
	}
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))
}

func (s cookieSigner) sign(id string) string {
	return id + "." + s.mac(id)
}

// verify returns the session id carried by a signed cookie value, or "" if the
// value is missing or tampered with.
func (s cookieSigner) verify(value string) string {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 {
		return ""
	}
	id, sig := value[:i], value[i+1:]
	if subtle.ConstantTimeCompare([]byte(sig), []byte(s.mac(id))) != 1 {
		return ""
	}
	return id
}
