package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"settlement_console/internal/console"
	"settlement_console/internal/models"
	"settlement_console/web/templates/pages"
	"settlement_console/web/templates/shared"
)

type ParticipantHandler struct {
	backend    console.Backend
	loader     *console.Loader
	controller *console.Controller
	sessions   *console.Sessions
	panel      PanelFunc
}

func NewParticipantHandler(backend console.Backend, loader *console.Loader, controller *console.Controller, sessions *console.Sessions, panel PanelFunc) *ParticipantHandler {
	return &ParticipantHandler{backend: backend, loader: loader, controller: controller, sessions: sessions, panel: panel}
}

// ListParticipants renders the participants tab
func (h *ParticipantHandler) ListParticipants(c echo.Context) error {
	id := sessionID(c)
	st, flash := h.sessions.Load(id).TakeFlash()
	st, view := h.loader.Participants(c.Request().Context(), st)
	h.sessions.Save(id, st)

	props := pages.ParticipantsListProps{
		PageMeta: pageMeta(c, "Participants", "participants", shared.Breadcrumb{Title: "Participants"}),
		Chat:     h.panel(c),
		View:     view,
		Flash:    flash,
	}
	return render(c, http.StatusOK, pages.ParticipantsList(props))
}

// CreateParticipantPage opens a blank form. ?role= pre-fills that role's default rate.
func (h *ParticipantHandler) CreateParticipantPage(c echo.Context) error {
	st, form, _ := h.controller.OpenParticipant(c.Request().Context(), h.sessions.Load(sessionID(c)), 0)
	if role := c.QueryParam("role"); role != "" {
		form = form.SelectRole(models.Role(role))
	}
	h.sessions.Save(sessionID(c), st)
	return h.renderForm(c, http.StatusOK, false, form, nil)
}

// StoreParticipant handles the creation of a new participant
func (h *ParticipantHandler) StoreParticipant(c echo.Context) error {
	st := h.sessions.Load(sessionID(c)).OpenModal(models.KindParticipant, 0)
	return h.save(c, st, false)
}

// EditParticipantPage renders the form filled from the backend
func (h *ParticipantHandler) EditParticipantPage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st, form, alert := h.controller.OpenParticipant(c.Request().Context(), h.sessions.Load(sessionID(c)), id)
	if alert != nil {
		h.sessions.Save(sessionID(c), st.WithFlash(alert))
		return c.Redirect(http.StatusSeeOther, "/participants")
	}
	h.sessions.Save(sessionID(c), st)
	return h.renderForm(c, http.StatusOK, true, form, nil)
}

// UpdateParticipant handles updating an existing participant
func (h *ParticipantHandler) UpdateParticipant(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st := h.sessions.Load(sessionID(c)).OpenModal(models.KindParticipant, id)
	return h.save(c, st, true)
}

func (h *ParticipantHandler) save(c echo.Context, st console.State, isEdit bool) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}
	form := console.ParticipantFormFromValues(values)

	out := h.controller.SaveParticipant(c.Request().Context(), st, form)
	if !out.Done {
		h.sessions.Save(sessionID(c), out.State)
		form.ID = out.State.Modal(models.KindParticipant).ID
		return h.renderForm(c, http.StatusUnprocessableEntity, isEdit, form, out.Alert)
	}
	return finish(c, h.sessions, out, "/participants")
}

// DeleteParticipantPage asks for confirmation when the page script is not running.
func (h *ParticipantHandler) DeleteParticipantPage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	name := h.name(c, id)
	props := pages.ConfirmDeleteProps{
		PageMeta: pageMeta(c, "Delete participant", "participants",
			shared.Breadcrumb{Title: "Participants", URL: "/participants"},
			shared.Breadcrumb{Title: "Delete"},
		),
		Prompt:    fmt.Sprintf("Really delete %q?", name),
		Action:    "/participants/" + strconv.FormatUint(uint64(id), 10) + "/delete",
		CancelURL: "/participants",
	}
	return render(c, http.StatusOK, pages.ConfirmDelete(props))
}

// DeleteParticipant removes a participant once confirmed
func (h *ParticipantHandler) DeleteParticipant(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st := h.sessions.Load(sessionID(c))
	out := h.controller.Delete(c.Request().Context(), st, models.KindParticipant, id, h.name(c, id), formConfirm(c))
	return finish(c, h.sessions, out, "/participants")
}

// name prefers the cached list and falls back to the backend, then to the id.
func (h *ParticipantHandler) name(c echo.Context, id uint) string {
	for _, p := range h.sessions.Load(sessionID(c)).Participants {
		if p.ID == id {
			return p.Name
		}
	}
	if p, err := h.backend.GetParticipant(c.Request().Context(), id); err == nil {
		return p.Name
	}
	return fmt.Sprintf("participant #%d", id)
}

func (h *ParticipantHandler) renderForm(c echo.Context, status int, isEdit bool, form console.ParticipantForm, alert *console.Alert) error {
	title := "Add Participant"
	if isEdit {
		title = "Edit Participant"
	}
	props := pages.ParticipantFormProps{
		PageMeta: pageMeta(c, title, "participants",
			shared.Breadcrumb{Title: "Participants", URL: "/participants"},
			shared.Breadcrumb{Title: title},
		),
		IsEdit: isEdit,
		Form:   form,
		Alert:  alert,
	}
	return render(c, status, pages.ParticipantForm(props))
}
