package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"settlement_console/internal/config"
)

type fakeIssuer struct {
	validToken string
}

func (f fakeIssuer) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != f.validToken {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "u1"}, nil
}

func (f fakeIssuer) SessionCookie(_ context.Context, idToken string, _ time.Duration) (string, error) {
	return "cookie-for-" + idToken, nil
}

func loginRequest(e *echo.Echo, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleLogin(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(fakeIssuer{validToken: "tok"}, config.AuthConfig{Enabled: true}, false)

	c, rec := loginRequest(e, "")
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = loginRequest(e, "tok")
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid authorization format")

	c, rec = loginRequest(e, "Bearer nope")
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = loginRequest(e, "Bearer tok")
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "session", cookies[0].Name)
	require.Equal(t, "cookie-for-tok", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}

func TestHandleLoginWithoutFirebase(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(nil, config.AuthConfig{Enabled: true}, false)

	c, rec := loginRequest(e, "Bearer tok")
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleLogoutExpiresCookie(t *testing.T) {
	e := echo.New()
	h := NewAuthHandler(nil, config.AuthConfig{}, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleLogout(e.NewContext(req, rec)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "session", cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}
