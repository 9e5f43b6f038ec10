package console

import (
	"context"
	"fmt"
	"log/slog"

	"settlement_console/internal/models"
)

// Backend is everything the form controller calls on the REST API.
type Backend interface {
	Source
	GetParticipant(ctx context.Context, id uint) (models.Participant, error)
	GetProject(ctx context.Context, id uint) (models.Project, error)
	Save(ctx context.Context, kind models.EntityKind, id uint, payload, out any) error
	Delete(ctx context.Context, kind models.EntityKind, id uint) error
	ProjectParticipants(ctx context.Context, projectID uint) ([]models.ProjectParticipant, error)
	AttachParticipant(ctx context.Context, projectID uint, in models.ProjectParticipantInput) error
	UpdateParticipantRate(ctx context.Context, projectID, participantID uint, rate float64) error
	DetachParticipant(ctx context.Context, projectID, participantID uint) error
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Outcome is the result of a write. Reload lists the views that must be refreshed.
type Outcome struct {
	State  State
	Alert  *Alert
	Done   bool
	Reload []Tab
	Ops    []OpResult
}

// Controller drives the participant and project modals.
type Controller struct {
	backend Backend
	logger  *slog.Logger
}

func NewController(backend Backend, logger *slog.Logger) *Controller {
	return &Controller{backend: backend, logger: logger}
}

func listTab(kind models.EntityKind) Tab {
	if kind == models.KindProject {
		return TabProjects
	}
	return TabParticipants
}

// OpenParticipant opens the modal blank for id 0, or populated from the backend.
// A failed fetch leaves the modal closed.
func (c *Controller) OpenParticipant(ctx context.Context, st State, id uint) (State, ParticipantForm, *Alert) {
	if id == 0 {
		return st.OpenModal(models.KindParticipant, 0), NewParticipantForm(), nil
	}

	p, err := c.backend.GetParticipant(ctx, id)
	if err != nil {
		c.logger.Error("failed to load participant", "id", id, "error", err)
		return st.CloseModal(models.KindParticipant), ParticipantForm{}, NewAlert(AlertDanger, "Failed to load participant: "+err.Error())
	}
	return st.OpenModal(models.KindParticipant, id), ParticipantFormFrom(p), nil
}

// OpenProject opens the project modal with the participant checklist.
func (c *Controller) OpenProject(ctx context.Context, st State, id uint) (State, ProjectForm, *Alert) {
	participants, err := c.backend.ListParticipants(ctx)
	if err != nil {
		c.logger.Warn("failed to load participants for checklist", "error", err)
	}
	st.Participants = participants

	if id == 0 {
		return st.OpenModal(models.KindProject, 0), NewProjectForm(participants), nil
	}

	p, err := c.backend.GetProject(ctx, id)
	if err != nil {
		c.logger.Error("failed to load project", "id", id, "error", err)
		return st.CloseModal(models.KindProject), ProjectForm{}, NewAlert(AlertDanger, "Failed to load project: "+err.Error())
	}
	attached, err := c.backend.ProjectParticipants(ctx, id)
	if err != nil {
		c.logger.Warn("failed to load project participants", "id", id, "error", err)
	}
	return st.OpenModal(models.KindProject, id), ProjectFormFrom(p, participants, attached), nil
}

// SaveParticipant creates or updates depending on the id stored in the open modal.
func (c *Controller) SaveParticipant(ctx context.Context, st State, form ParticipantForm) Outcome {
	id := st.Modal(models.KindParticipant).ID

	if err := c.backend.Save(ctx, models.KindParticipant, id, form.Input(), nil); err != nil {
		c.logger.Error("failed to save participant", "id", id, "error", err)
		return Outcome{State: st, Alert: NewAlert(AlertDanger, "Failed to save participant: "+err.Error())}
	}

	msg := "Participant added."
	if id != 0 {
		msg = "Participant updated."
	}
	alert := NewAlert(AlertSuccess, msg)
	return Outcome{
		State:  st.CloseModal(models.KindParticipant).WithFlash(alert),
		Alert:  alert,
		Done:   true,
		Reload: []Tab{TabParticipants, TabDashboard},
	}
}

// SaveProject writes the project, then reconciles its participants one by one.
// Membership failures are logged and reported but the save itself stands.
func (c *Controller) SaveProject(ctx context.Context, st State, form ProjectForm) Outcome {
	id := st.Modal(models.KindProject).ID

	in, err := form.Input()
	if err != nil {
		return Outcome{State: st, Alert: NewAlert(AlertWarning, "Check the form: "+err.Error())}
	}

	var saved models.Project
	if err := c.backend.Save(ctx, models.KindProject, id, in, &saved); err != nil {
		c.logger.Error("failed to save project", "id", id, "error", err)
		return Outcome{State: st, Alert: NewAlert(AlertDanger, "Failed to save project: "+err.Error())}
	}

	projectID := id
	if projectID == 0 {
		projectID = saved.ID
	}

	msg := "Project added."
	if id != 0 {
		msg = "Project updated."
	}
	kind := AlertSuccess

	var results []OpResult
	if projectID == 0 {
		// The create landed but without an id nothing can be attached.
		c.logger.Error("project saved without an id", "error", models.ErrMalformedResponse)
		for _, op := range PlanMemberOps(form.Members, nil) {
			results = append(results, OpResult{MemberOp: op, Err: fmt.Errorf("%w: project id missing", models.ErrMalformedResponse)})
		}
		kind = AlertWarning
		msg = fmt.Sprintf("%s The backend did not return its id, %d participant(s) were not attached.", msg, len(results))
	} else {
		var attached []models.ProjectParticipant
		if id != 0 {
			if attached, err = c.backend.ProjectParticipants(ctx, projectID); err != nil {
				c.logger.Warn("failed to load project participants", "id", projectID, "error", err)
			}
		}
		results = c.ApplyMemberOps(ctx, projectID, PlanMemberOps(form.Members, attached))
		if failed := countFailed(results); failed > 0 {
			kind = AlertWarning
			msg = fmt.Sprintf("%s %d participant change(s) failed.", msg, failed)
		}
	}
	alert := NewAlert(kind, msg)

	return Outcome{
		State:  st.CloseModal(models.KindProject).WithFlash(alert),
		Alert:  alert,
		Done:   true,
		Reload: []Tab{TabProjects, TabDashboard},
		Ops:    results,
	}
}

// ApplyMemberOps runs every op in order. There is no rollback.
func (c *Controller) ApplyMemberOps(ctx context.Context, projectID uint, ops []MemberOp) []OpResult {
	results := make([]OpResult, 0, len(ops))
	for _, op := range ops {
		var err error
		switch op.Kind {
		case OpAttach:
			err = c.backend.AttachParticipant(ctx, projectID, models.ProjectParticipantInput{
				ParticipantID: op.ParticipantID,
				ProfitRate:    op.Rate,
			})
		case OpUpdateRate:
			err = c.backend.UpdateParticipantRate(ctx, projectID, op.ParticipantID, *op.Rate)
		case OpDetach:
			err = c.backend.DetachParticipant(ctx, projectID, op.ParticipantID)
		}
		if err != nil {
			c.logger.Error("participant change failed",
				"project_id", projectID,
				"participant_id", op.ParticipantID,
				"op", op.Kind.String(),
				"error", err,
			)
		}
		results = append(results, OpResult{MemberOp: op, Err: err})
	}
	return results
}

func countFailed(results []OpResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Delete removes a record only after confirm approves the prompt.
func (c *Controller) Delete(ctx context.Context, st State, kind models.EntityKind, id uint, name string, confirm Confirmer) Outcome {
	if !confirm.Confirm(fmt.Sprintf("Really delete %q?", name)) {
		return Outcome{State: st}
	}

	if err := c.backend.Delete(ctx, kind, id); err != nil {
		c.logger.Error("failed to delete", "kind", kind.String(), "id", id, "error", err)
		return Outcome{State: st, Alert: NewAlert(AlertDanger, fmt.Sprintf("Failed to delete %s: %s", kind, err))}
	}

	alert := NewAlert(AlertSuccess, fmt.Sprintf("Deleted %s.", name))
	return Outcome{
		State:  st.WithFlash(alert),
		Alert:  alert,
		Done:   true,
		Reload: []Tab{listTab(kind), TabDashboard},
	}
}
