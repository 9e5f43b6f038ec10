package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"settlement_console/internal/services"
	"settlement_console/web/templates/pages"
	"settlement_console/web/templates/shared"
)

var publicPrefixes = []string{"/login", "/auth", "/static", "/api/models"}

// NewErrorHandler renders errors as console pages. Backend rejections that
// escape a handler keep their status and detail.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorTitle := "Internal Server Error"
		errorMessage := ""

		var he *echo.HTTPError
		var apiErr *services.APIError
		switch {
		case errors.As(err, &he):
			code = he.Code
			if msg, ok := he.Message.(string); ok && msg != "" {
				errorMessage = msg
			}
		case errors.As(err, &apiErr):
			code = http.StatusBadGateway
			errorMessage = apiErr.Detail
		}

		switch code {
		case http.StatusNotFound:
			errorTitle = "Page Not Found"
			if errorMessage == "" {
				errorMessage = "The page you're looking for doesn't exist."
			}
		case http.StatusForbidden:
			errorTitle = "Access Denied"
			if errorMessage == "" {
				errorMessage = "You don't have permission to access this resource."
			}
		case http.StatusUnauthorized:
			errorTitle = "Unauthorized"
			if errorMessage == "" {
				errorMessage = "Please log in to continue."
			}
		case http.StatusBadRequest:
			errorTitle = "Bad Request"
			if errorMessage == "" {
				errorMessage = "The request could not be processed."
			}
		case http.StatusBadGateway:
			errorTitle = "Backend Unavailable"
		}
		if errorMessage == "" {
			errorMessage = "Something went wrong. Please try again later."
		}

		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Request().URL.Path, "status", code, "error", err)
		} else {
			logger.Warn("request rejected", "path", c.Request().URL.Path, "status", code, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
			_ = c.JSON(code, map[string]string{"detail": errorMessage})
			return
		}

		props := pages.ErrorPageProps{
			PageMeta: shared.PageMeta{
				Title: errorTitle,
				Breadcrumbs: []shared.Breadcrumb{
					{Title: "Home", URL: "/"},
					{Title: "Error", URL: ""},
				},
				UserEmail: stringFromContext(c, "userEmail"),
				UserUID:   stringFromContext(c, "userUID"),
			},
			ErrorTitle:   errorTitle,
			ErrorMessage: errorMessage,
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(code)

		page := pages.ErrorPage(props)
		if isPublicPath(c.Request().URL.Path) {
			page = pages.PublicErrorPage(props)
		}
		if renderErr := page.Render(c.Request().Context(), c.Response()); renderErr != nil {
			logger.Error("failed to render error page", "error", renderErr)
		}
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func stringFromContext(c echo.Context, key string) string {
	if s, ok := c.Get(key).(string); ok {
		return s
	}
	return ""
}
