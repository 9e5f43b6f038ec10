package handlers

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"settlement_console/internal/console"
	"settlement_console/internal/middleware"
	"settlement_console/web/templates/shared"
)

// PanelFunc builds the chat widget for the current request's session.
type PanelFunc func(c echo.Context) *shared.ChatPanel

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func sessionID(c echo.Context) string {
	return getStringFromContext(c, middleware.SessionKey)
}

func pageMeta(c echo.Context, title, nav string, breadcrumbs ...shared.Breadcrumb) shared.PageMeta {
	return shared.PageMeta{
		Title:       title,
		ActiveNav:   nav,
		Breadcrumbs: append([]shared.Breadcrumb{{Title: "Home", URL: "/"}}, breadcrumbs...),
		UserEmail:   getStringFromContext(c, "userEmail"),
		UserUID:     getStringFromContext(c, "userUID"),
	}
}

func render(c echo.Context, status int, comp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return comp.Render(c.Request().Context(), c.Response())
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

// formConfirm approves a delete only when the confirmation form was submitted.
func formConfirm(c echo.Context) console.Confirmer {
	return console.ConfirmFunc(func(string) bool {
		return c.FormValue("confirm") == "yes"
	})
}

// finish stores the outcome's state and sends the browser back to the list.
func finish(c echo.Context, sessions *console.Sessions, out console.Outcome, list string) error {
	st := out.State
	if !out.Done && out.Alert != nil {
		st = st.WithFlash(out.Alert)
	}
	sessions.Save(sessionID(c), st)
	return c.Redirect(http.StatusSeeOther, list)
}
