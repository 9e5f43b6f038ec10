package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

const authCookie = "session"

// SessionVerifier checks a Firebase session cookie. *auth.Client satisfies it.
type SessionVerifier interface {
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// ClearAuthCookie expires the login cookie.
func ClearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     authCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// RequireAuth returns a middleware that verifies Firebase session cookies.
// A nil verifier means auth is not configured and every request is bounced to /login.
func RequireAuth(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return c.Redirect(http.StatusTemporaryRedirect, "/login?error=auth_not_configured")
			}

			cookie, err := c.Cookie(authCookie)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			token, err := verifier.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				ClearAuthCookie(c)
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			c.Set("userUID", token.UID)
			if email, ok := token.Claims["email"].(string); ok {
				c.Set("userEmail", email)
			}
			if name, ok := token.Claims["name"].(string); ok {
				c.Set("userName", name)
			}

			return next(c)
		}
	}
}

// Anonymous stands in for RequireAuth when sign-in is disabled.
func Anonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("userUID", "local")
			return next(c)
		}
	}
}
