package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"settlement_console/internal/services"
)

type fakeVerifier struct {
	token   *auth.Token
	err     error
	cookies []string
}

func (f *fakeVerifier) VerifySessionCookie(_ context.Context, cookie string) (*auth.Token, error) {
	f.cookies = append(f.cookies, cookie)
	return f.token, f.err
}

func okHandler(c echo.Context) error {
	email, _ := c.Get("userEmail").(string)
	return c.String(http.StatusOK, email)
}

func TestRequireAuthRedirectsWithoutCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()

	err := RequireAuth(&fakeVerifier{})(okHandler)(e.NewContext(req, rec))
	require.NoError(t, err)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireAuthNotConfigured(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()

	err := RequireAuth(nil)(okHandler)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	require.NoError(t, err)
	require.Equal(t, "/login?error=auth_not_configured", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireAuthInvalidCookieIsCleared(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "stale"})
	rec := httptest.NewRecorder()

	v := &fakeVerifier{err: errors.New("expired")}
	require.NoError(t, RequireAuth(v)(okHandler)(e.NewContext(req, rec)))
	require.Equal(t, []string{"stale"}, v.cookies)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestRequireAuthSetsUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
	rec := httptest.NewRecorder()

	v := &fakeVerifier{token: &auth.Token{UID: "u1", Claims: map[string]interface{}{"email": "ops@example.com"}}}
	require.NoError(t, RequireAuth(v)(okHandler)(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ops@example.com", rec.Body.String())
}

func TestConsoleSessionIssuesAndKeepsIDs(t *testing.T) {
	e := echo.New()
	mw := ConsoleSession(time.Hour, false)
	var seen string
	h := mw(func(c echo.Context) error {
		seen = c.Get(SessionKey).(string)
		return nil
	})

	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: first})
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
	require.Equal(t, first, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-uuid"})
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))
	require.NotEqual(t, "not-a-uuid", seen)
}

func TestErrorHandler(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := echo.New()

	rec := httptest.NewRecorder()
	handler(echo.ErrNotFound, e.NewContext(httptest.NewRequest(http.MethodGet, "/nope", nil), rec))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page Not Found")

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	handler(&services.APIError{StatusCode: 400, Detail: "code already exists"}, e.NewContext(req, rec))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"detail":"code already exists"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler(errors.New("boom"), e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Back to login")
}
