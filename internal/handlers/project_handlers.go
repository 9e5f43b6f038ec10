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

type ProjectHandler struct {
	backend    console.Backend
	loader     *console.Loader
	controller *console.Controller
	sessions   *console.Sessions
	panel      PanelFunc
}

func NewProjectHandler(backend console.Backend, loader *console.Loader, controller *console.Controller, sessions *console.Sessions, panel PanelFunc) *ProjectHandler {
	return &ProjectHandler{backend: backend, loader: loader, controller: controller, sessions: sessions, panel: panel}
}

// ListProjects renders the projects tab
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	id := sessionID(c)
	st, flash := h.sessions.Load(id).TakeFlash()
	st, view := h.loader.Projects(c.Request().Context(), st)
	h.sessions.Save(id, st)

	props := pages.ProjectsListProps{
		PageMeta: pageMeta(c, "Projects", "projects", shared.Breadcrumb{Title: "Projects"}),
		Chat:     h.panel(c),
		View:     view,
		Flash:    flash,
	}
	return render(c, http.StatusOK, pages.ProjectsList(props))
}

// CreateProjectPage renders a blank form with the participant checklist
func (h *ProjectHandler) CreateProjectPage(c echo.Context) error {
	st, form, _ := h.controller.OpenProject(c.Request().Context(), h.sessions.Load(sessionID(c)), 0)
	h.sessions.Save(sessionID(c), st)
	return h.renderForm(c, http.StatusOK, false, form, nil)
}

// StoreProject handles the creation of a new project
func (h *ProjectHandler) StoreProject(c echo.Context) error {
	st := h.sessions.Load(sessionID(c)).OpenModal(models.KindProject, 0)
	return h.save(c, st, false)
}

// EditProjectPage renders the form with the project's current participants checked
func (h *ProjectHandler) EditProjectPage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st, form, alert := h.controller.OpenProject(c.Request().Context(), h.sessions.Load(sessionID(c)), id)
	if alert != nil {
		h.sessions.Save(sessionID(c), st.WithFlash(alert))
		return c.Redirect(http.StatusSeeOther, "/projects")
	}
	h.sessions.Save(sessionID(c), st)
	return h.renderForm(c, http.StatusOK, true, form, nil)
}

// UpdateProject handles updating an existing project
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st := h.sessions.Load(sessionID(c)).OpenModal(models.KindProject, id)
	return h.save(c, st, true)
}

func (h *ProjectHandler) save(c echo.Context, st console.State, isEdit bool) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}

	// The checklist is matched against the current participants, not the cached ones.
	participants, err := h.backend.ListParticipants(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("failed to load participants for checklist: %v", err)
		participants = st.Participants
	}
	st.Participants = participants
	form := console.ProjectFormFromValues(values, participants)

	out := h.controller.SaveProject(c.Request().Context(), st, form)
	if !out.Done {
		h.sessions.Save(sessionID(c), out.State)
		form.ID = out.State.Modal(models.KindProject).ID
		return h.renderForm(c, http.StatusUnprocessableEntity, isEdit, form, out.Alert)
	}
	return finish(c, h.sessions, out, "/projects")
}

// DeleteProjectPage asks for confirmation when the page script is not running.
func (h *ProjectHandler) DeleteProjectPage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	props := pages.ConfirmDeleteProps{
		PageMeta: pageMeta(c, "Delete project", "projects",
			shared.Breadcrumb{Title: "Projects", URL: "/projects"},
			shared.Breadcrumb{Title: "Delete"},
		),
		Prompt:    fmt.Sprintf("Really delete %q?", h.name(c, id)),
		Action:    "/projects/" + strconv.FormatUint(uint64(id), 10) + "/delete",
		CancelURL: "/projects",
	}
	return render(c, http.StatusOK, pages.ConfirmDelete(props))
}

// DeleteProject removes a project once confirmed
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	st := h.sessions.Load(sessionID(c))
	out := h.controller.Delete(c.Request().Context(), st, models.KindProject, id, h.name(c, id), formConfirm(c))
	return finish(c, h.sessions, out, "/projects")
}

func (h *ProjectHandler) name(c echo.Context, id uint) string {
	for _, p := range h.sessions.Load(sessionID(c)).Projects {
		if p.ID == id {
			return p.Name
		}
	}
	if p, err := h.backend.GetProject(c.Request().Context(), id); err == nil {
		return p.Name
	}
	return fmt.Sprintf("project #%d", id)
}

func (h *ProjectHandler) renderForm(c echo.Context, status int, isEdit bool, form console.ProjectForm, alert *console.Alert) error {
	title := "Add Project"
	if isEdit {
		title = "Edit Project"
	}
	props := pages.ProjectFormProps{
		PageMeta: pageMeta(c, title, "projects",
			shared.Breadcrumb{Title: "Projects", URL: "/projects"},
			shared.Breadcrumb{Title: title},
		),
		IsEdit: isEdit,
		Form:   form,
		Alert:  alert,
	}
	return render(c, status, pages.ProjectForm(props))
}
