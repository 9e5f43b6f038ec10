package services

import (
	"context"
	"fmt"
	"net/http"

	"settlement_console/internal/models"
)

// Backend wraps the settlement REST API with typed calls
type Backend struct {
	api *APIClient
}

func NewBackend(api *APIClient) *Backend {
	return &Backend{api: api}
}

func (b *Backend) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	var out []models.Participant
	if err := b.api.FetchAPI(ctx, http.MethodGet, models.KindParticipant.CollectionPath(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) GetParticipant(ctx context.Context, id uint) (models.Participant, error) {
	var out models.Participant
	err := b.api.FetchAPI(ctx, http.MethodGet, models.KindParticipant.ItemPath(id), nil, &out)
	return out, err
}

func (b *Backend) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := b.api.FetchAPI(ctx, http.MethodGet, models.KindProject.CollectionPath(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) GetProject(ctx context.Context, id uint) (models.Project, error) {
	var out models.Project
	err := b.api.FetchAPI(ctx, http.MethodGet, models.KindProject.ItemPath(id), nil, &out)
	return out, err
}

// Save creates the record when id is zero and updates it otherwise.
// The backend's echo of the record is decoded into out when non-nil.
func (b *Backend) Save(ctx context.Context, kind models.EntityKind, id uint, payload, out any) error {
	if id == 0 {
		return b.api.FetchAPI(ctx, http.MethodPost, kind.CollectionPath(), payload, out)
	}
	return b.api.FetchAPI(ctx, http.MethodPut, kind.ItemPath(id), payload, out)
}

func (b *Backend) Delete(ctx context.Context, kind models.EntityKind, id uint) error {
	return b.api.FetchAPI(ctx, http.MethodDelete, kind.ItemPath(id), nil, nil)
}

func (b *Backend) ProjectParticipants(ctx context.Context, projectID uint) ([]models.ProjectParticipant, error) {
	var out []models.ProjectParticipant
	if err := b.api.FetchAPI(ctx, http.MethodGet, projectParticipantsPath(projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) AttachParticipant(ctx context.Context, projectID uint, in models.ProjectParticipantInput) error {
	return b.api.FetchAPI(ctx, http.MethodPost, projectParticipantsPath(projectID), in, nil)
}

func (b *Backend) UpdateParticipantRate(ctx context.Context, projectID, participantID uint, rate float64) error {
	payload := map[string]float64{"profit_rate": rate}
	return b.api.FetchAPI(ctx, http.MethodPut, projectParticipantPath(projectID, participantID), payload, nil)
}

func (b *Backend) DetachParticipant(ctx context.Context, projectID, participantID uint) error {
	return b.api.FetchAPI(ctx, http.MethodDelete, projectParticipantPath(projectID, participantID), nil, nil)
}

func (b *Backend) CalculateSettlement(ctx context.Context, projectID uint) (models.SettlementResult, error) {
	var out models.SettlementResult
	err := b.api.FetchAPI(ctx, http.MethodPost, "/settlements/calculate", models.SettlementRequest{ProjectID: projectID}, &out)
	return out, err
}

func projectParticipantsPath(projectID uint) string {
	return fmt.Sprintf("/projects/%d/participants", projectID)
}

func projectParticipantPath(projectID, participantID uint) string {
	return fmt.Sprintf("/projects/%d/participants/%d", projectID, participantID)
}
