package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"settlement_console/internal/models"
)

var errBackendDown = errors.New("backend down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type call struct {
	Method string
	Kind   models.EntityKind
	ID     uint
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	participants    []models.Participant
	projects        []models.Project
	attached        []models.ProjectParticipant
	participantsErr error
	projectsErr     error
	getErr          error
	saveErr         error
	deleteErr       error
	savedID         uint
	settlement      models.SettlementResult
	settlementErr   error

	attachFn func(projectID uint, in models.ProjectParticipantInput) error
}

func (f *fakeBackend) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeBackend) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	f.record(call{Method: "ListParticipants"})
	return f.participants, f.participantsErr
}

func (f *fakeBackend) ListProjects(ctx context.Context) ([]models.Project, error) {
	f.record(call{Method: "ListProjects"})
	return f.projects, f.projectsErr
}

func (f *fakeBackend) GetParticipant(ctx context.Context, id uint) (models.Participant, error) {
	f.record(call{Method: "GetParticipant", ID: id})
	for _, p := range f.participants {
		if p.ID == id {
			return p, f.getErr
		}
	}
	return models.Participant{}, errors.New("not found")
}

func (f *fakeBackend) GetProject(ctx context.Context, id uint) (models.Project, error) {
	f.record(call{Method: "GetProject", ID: id})
	if f.getErr != nil {
		return models.Project{}, f.getErr
	}
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, errors.New("not found")
}

func (f *fakeBackend) Save(ctx context.Context, kind models.EntityKind, id uint, payload, out any) error {
	method := "PUT"
	if id == 0 {
		method = "POST"
	}
	f.record(call{Method: method, Kind: kind, ID: id})
	if f.saveErr != nil {
		return f.saveErr
	}
	if p, ok := out.(*models.Project); ok {
		p.ID = f.savedID
	}
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, kind models.EntityKind, id uint) error {
	f.record(call{Method: "DELETE", Kind: kind, ID: id})
	return f.deleteErr
}

func (f *fakeBackend) ProjectParticipants(ctx context.Context, projectID uint) ([]models.ProjectParticipant, error) {
	f.record(call{Method: "ProjectParticipants", ID: projectID})
	return f.attached, nil
}

func (f *fakeBackend) AttachParticipant(ctx context.Context, projectID uint, in models.ProjectParticipantInput) error {
	f.record(call{Method: "Attach", ID: in.ParticipantID})
	if f.attachFn != nil {
		return f.attachFn(projectID, in)
	}
	return nil
}

func (f *fakeBackend) UpdateParticipantRate(ctx context.Context, projectID, participantID uint, rate float64) error {
	f.record(call{Method: "UpdateRate", ID: participantID})
	return nil
}

func (f *fakeBackend) DetachParticipant(ctx context.Context, projectID, participantID uint) error {
	f.record(call{Method: "Detach", ID: participantID})
	return nil
}

func (f *fakeBackend) CalculateSettlement(ctx context.Context, projectID uint) (models.SettlementResult, error) {
	f.record(call{Method: "Calculate", ID: projectID})
	return f.settlement, f.settlementErr
}
