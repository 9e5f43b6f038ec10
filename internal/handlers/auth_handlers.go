package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"settlement_console/internal/config"
	"settlement_console/internal/middleware"
)

const sessionLifetime = 24 * 5 * time.Hour

// SessionIssuer exchanges a Firebase ID token for a session cookie. *auth.Client satisfies it.
type SessionIssuer interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	issuer SessionIssuer
	cfg    config.AuthConfig
	secure bool
}

// NewAuthHandler creates a new AuthHandler. issuer is nil when sign-in is disabled.
func NewAuthHandler(issuer SessionIssuer, cfg config.AuthConfig, secure bool) *AuthHandler {
	return &AuthHandler{issuer: issuer, cfg: cfg, secure: secure}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(c echo.Context) error {
	data := map[string]interface{}{
		"AuthEnabled":        h.cfg.Enabled,
		"FirebaseAPIKey":     h.cfg.APIKey,
		"FirebaseAuthDomain": h.cfg.AuthDomain,
		"FirebaseProjectID":  h.cfg.ProjectID,
		"Error":              loginError(c.QueryParam("error")),
	}
	return c.Render(http.StatusOK, "login.html", data)
}

func loginError(code string) string {
	switch code {
	case "":
		return ""
	case "auth_not_configured":
		return "Sign-in is enabled but Firebase is not configured on this server."
	default:
		return "Sign-in failed."
	}
}

// HandleLogin verifies the Firebase ID token and creates a session cookie
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if h.issuer == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Firebase not initialized",
		})
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Missing authorization header",
		})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid authorization format",
		})
	}

	if _, err := h.issuer.VerifyIDToken(c.Request().Context(), tokenString); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	cookieValue, err := h.issuer.SessionCookie(c.Request().Context(), tokenString, sessionLifetime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create session",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    cookieValue,
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
	})
}

// HandleLogout clears the session cookie
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	middleware.ClearAuthCookie(c)
	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged out",
	})
}
