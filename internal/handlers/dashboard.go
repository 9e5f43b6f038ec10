package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"settlement_console/internal/console"
	"settlement_console/web/templates/pages"
	"settlement_console/web/templates/shared"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	loader   *console.Loader
	sessions *console.Sessions
	panel    PanelFunc
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(loader *console.Loader, sessions *console.Sessions, panel PanelFunc) *DashboardHandler {
	return &DashboardHandler{loader: loader, sessions: sessions, panel: panel}
}

// Dashboard renders the dashboard page
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	id := sessionID(c)
	st, flash := h.sessions.Load(id).TakeFlash()
	st, view := h.loader.Dashboard(c.Request().Context(), st)
	h.sessions.Save(id, st)

	props := pages.DashboardProps{
		PageMeta: pageMeta(c, "Dashboard", "dashboard", shared.Breadcrumb{Title: "Dashboard"}),
		Chat:     h.panel(c),
		View:     view,
		Flash:    flash,
	}
	return render(c, http.StatusOK, pages.Dashboard(props))
}
