package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"settlement_console/internal/console"
	"settlement_console/web/templates/pages"
	"settlement_console/web/templates/shared"
)

type SettlementHandler struct {
	settlements *console.Settlements
	sessions    *console.Sessions
	panel       PanelFunc
}

func NewSettlementHandler(settlements *console.Settlements, sessions *console.Sessions, panel PanelFunc) *SettlementHandler {
	return &SettlementHandler{settlements: settlements, sessions: sessions, panel: panel}
}

// SettlementPage renders the project picker and the placeholder result.
// ?project_id= calculates straight away; print=1 drops the chat widget and prints on load.
func (h *SettlementHandler) SettlementPage(c echo.Context) error {
	id := sessionID(c)
	st, view := h.settlements.Open(c.Request().Context(), h.sessions.Load(id))
	if pid := c.QueryParam("project_id"); pid != "" {
		st, view = h.settlements.Calculate(c.Request().Context(), st, pid)
	}
	h.sessions.Save(id, st)

	if c.QueryParam("print") == "1" {
		return render(c, http.StatusOK, pages.Settlements(pages.SettlementsProps{
			PageMeta: pageMeta(c, "Settlement", "settlements", shared.Breadcrumb{Title: "Settlements"}),
			View:     view,
			Print:    true,
		}))
	}
	return h.render(c, view)
}

// Calculate renders the breakdown for the submitted project
func (h *SettlementHandler) Calculate(c echo.Context) error {
	id := sessionID(c)
	st, view := h.settlements.Calculate(c.Request().Context(), h.sessions.Load(id), c.FormValue("project_id"))
	h.sessions.Save(id, st)
	return h.render(c, view)
}

func (h *SettlementHandler) render(c echo.Context, view console.SettlementView) error {
	props := pages.SettlementsProps{
		PageMeta: pageMeta(c, "Settlements", "settlements", shared.Breadcrumb{Title: "Settlements"}),
		Chat:     h.panel(c),
		View:     view,
	}
	return render(c, http.StatusOK, pages.Settlements(props))
}
