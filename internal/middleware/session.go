package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "console_sid"
	SessionKey    = "sessionID"
)

// ConsoleSession gives every browser a stable id for its console and chat state.
// Ids that do not parse as UUIDs are replaced.
func ConsoleSession(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				Path:     "/",
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(SessionKey, id)
			return next(c)
		}
	}
}
