package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"settlement_console/internal/avatar"
	"settlement_console/internal/chatbot"
	"settlement_console/internal/console"
	"settlement_console/internal/middleware"
	"settlement_console/internal/models"
	"settlement_console/internal/services"
	"settlement_console/web/templates/shared"
)

type stubBackend struct {
	participants []models.Participant
	projects     []models.Project
	settlement   *models.SettlementResult
	saveErr      error
	saved        []any
	deleted      []uint
}

func (b *stubBackend) ListParticipants(context.Context) ([]models.Participant, error) {
	return b.participants, nil
}

func (b *stubBackend) ListProjects(context.Context) ([]models.Project, error) {
	return b.projects, nil
}

func (b *stubBackend) GetParticipant(_ context.Context, id uint) (models.Participant, error) {
	for _, p := range b.participants {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Participant{}, &services.APIError{StatusCode: 404, Detail: "Participant not found"}
}

func (b *stubBackend) GetProject(_ context.Context, id uint) (models.Project, error) {
	for _, p := range b.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, &services.APIError{StatusCode: 404, Detail: "Project not found"}
}

func (b *stubBackend) Save(_ context.Context, _ models.EntityKind, _ uint, payload, _ any) error {
	b.saved = append(b.saved, payload)
	return b.saveErr
}

func (b *stubBackend) Delete(_ context.Context, _ models.EntityKind, id uint) error {
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *stubBackend) ProjectParticipants(context.Context, uint) ([]models.ProjectParticipant, error) {
	return nil, nil
}

func (b *stubBackend) AttachParticipant(context.Context, uint, models.ProjectParticipantInput) error {
	return nil
}

func (b *stubBackend) UpdateParticipantRate(context.Context, uint, uint, float64) error {
	return nil
}

func (b *stubBackend) DetachParticipant(context.Context, uint, uint) error {
	return nil
}

func (b *stubBackend) CalculateSettlement(context.Context, uint) (models.SettlementResult, error) {
	if b.settlement == nil {
		return models.SettlementResult{}, errors.New("no settlement")
	}
	return *b.settlement, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noPanel(echo.Context) *shared.ChatPanel { return nil }

func newParticipantHandler(b *stubBackend) (*ParticipantHandler, *console.Sessions) {
	sessions := console.NewSessions(time.Hour)
	loader := console.NewLoader(b, discard())
	ctrl := console.NewController(b, discard())
	return NewParticipantHandler(b, loader, ctrl, sessions, noPanel), sessions
}

func newContext(e *echo.Echo, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionKey, "sid-1")
	return c, rec
}

func TestEmptyParticipantListSpansEightColumns(t *testing.T) {
	e := echo.New()
	h, _ := newParticipantHandler(&stubBackend{})

	c, rec := newContext(e, http.MethodGet, "/participants", nil)
	require.NoError(t, h.ListParticipants(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `colspan="8"`)
}

func TestDeleteParticipantNeedsConfirmation(t *testing.T) {
	e := echo.New()
	b := &stubBackend{participants: []models.Participant{{ID: 3, Name: "Kim", Role: models.RoleLead}}}
	h, _ := newParticipantHandler(b)

	c, rec := newContext(e, http.MethodGet, "/participants/3/delete", nil)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.DeleteParticipantPage(c))
	require.Contains(t, rec.Body.String(), "Really delete &#34;Kim&#34;?")

	c, rec = newContext(e, http.MethodPost, "/participants/3/delete", url.Values{})
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.DeleteParticipant(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Empty(t, b.deleted)

	c, rec = newContext(e, http.MethodPost, "/participants/3/delete", url.Values{"confirm": {"yes"}})
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.DeleteParticipant(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/participants", rec.Header().Get(echo.HeaderLocation))
	require.Equal(t, []uint{3}, b.deleted)

	c, rec = newContext(e, http.MethodGet, "/participants", nil)
	require.NoError(t, h.ListParticipants(c))
	require.Contains(t, rec.Body.String(), "Deleted Kim.")

	c, rec = newContext(e, http.MethodGet, "/participants", nil)
	require.NoError(t, h.ListParticipants(c))
	require.NotContains(t, rec.Body.String(), "Deleted Kim.")
}

func TestStoreParticipantDefaultsRateFromRole(t *testing.T) {
	e := echo.New()
	b := &stubBackend{}
	h, _ := newParticipantHandler(b)

	c, rec := newContext(e, http.MethodPost, "/participants", url.Values{"name": {"Lee"}, "role": {"senior"}})
	require.NoError(t, h.StoreParticipant(c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.Len(t, b.saved, 1)
	in := b.saved[0].(models.ParticipantInput)
	require.Equal(t, "Lee", in.Name)
	require.Equal(t, 20.0, *in.DefaultProfitRate)
}

func TestStoreParticipantFailureKeepsForm(t *testing.T) {
	e := echo.New()
	b := &stubBackend{saveErr: &services.APIError{StatusCode: 400, Detail: "Name is required"}}
	h, _ := newParticipantHandler(b)

	c, rec := newContext(e, http.MethodPost, "/participants", url.Values{"name": {""}, "role": {"regular"}})
	require.NoError(t, h.StoreParticipant(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Failed to save participant: Name is required")
	require.Contains(t, rec.Body.String(), `action="/participants"`)
}

func TestCalculateWithoutProjectWarns(t *testing.T) {
	e := echo.New()
	b := &stubBackend{}
	h := NewSettlementHandler(console.NewSettlements(b, b, discard()), console.NewSessions(time.Hour), noPanel)

	c, rec := newContext(e, http.MethodPost, "/settlements/calculate", url.Values{"project_id": {""}})
	require.NoError(t, h.Calculate(c))
	require.Contains(t, rec.Body.String(), "Please select a project.")
	require.Contains(t, rec.Body.String(), console.SettlementPlaceholder)
}

func TestPrintableSettlementView(t *testing.T) {
	e := echo.New()
	b := &stubBackend{
		projects: []models.Project{{ID: 7, Name: "Portal", Status: models.StatusCompleted}},
		settlement: &models.SettlementResult{
			ProjectID:   7,
			ProjectName: "Portal",
			TotalProfit: 1000000,
			Lines: []models.SettlementLine{
				{ParticipantID: 1, ParticipantName: "Kim", ParticipantCode: "P001", ParticipantRole: models.RoleLead, ProfitRate: 25, Amount: 250000.5},
			},
		},
	}
	h := NewSettlementHandler(console.NewSettlements(b, b, discard()), console.NewSessions(time.Hour), noPanel)

	c, rec := newContext(e, http.MethodGet, "/settlements?project_id=7&print=1", nil)
	require.NoError(t, h.SettlementPage(c))
	body := rec.Body.String()
	require.Contains(t, body, "data-autoprint")
	require.Contains(t, body, "Kim")
	require.NotContains(t, body, `id="chat-panel"`)

	c, rec = newContext(e, http.MethodGet, "/settlements?project_id=7", nil)
	require.NoError(t, h.SettlementPage(c))
	require.NotContains(t, rec.Body.String(), "data-autoprint")
	require.Contains(t, rec.Body.String(), "/settlements?project_id=7&amp;print=1")
}

type echoAssistant struct{}

func (echoAssistant) CharacterChat(_ context.Context, req models.CharacterChatRequest) (string, error) {
	return req.Character + ": " + req.Message, nil
}

func (echoAssistant) DocumentChat(context.Context, models.DocumentChatRequest) (string, error) {
	return "", errors.New("no documents")
}

func (echoAssistant) Synthesize(context.Context, string, string) ([]byte, error) {
	return []byte("mp3"), nil
}

type noDownloads struct{}

func (noDownloads) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("offline")
}

func newChatHandler() *ChatHandler {
	hub := chatbot.NewHub(echoAssistant{}, chatbot.NewMemoryContextStore(0), chatbot.HubConfig{
		Widget: chatbot.WidgetConfig{Character: "예진이", Model: "groq", Greeting: "hi"},
		Voice:  chatbot.VoiceConfig{Character: "예진이"},
	}, discard())
	return NewChatHandler(hub, avatar.NewLoader(noDownloads{}, "http://assets", discard()))
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionKey, "sid-1")
	return c, rec
}

func TestChatMessageAndCharacterSwitch(t *testing.T) {
	e := echo.New()
	h := newChatHandler()

	c, rec := jsonContext(e, http.MethodPost, "/chat/character", `{"character":"david"}`)
	require.NoError(t, h.SelectCharacter(c))
	var switched struct {
		Scene  avatar.Scene           `json:"scene"`
		Widget chatbot.WidgetSnapshot `json:"widget"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &switched))
	require.Equal(t, "데이빗", switched.Scene.Profile.Name)
	require.NotNil(t, switched.Scene.Fallback)
	require.Equal(t, "👨‍💻", switched.Scene.Fallback.Emoji)

	c, rec = jsonContext(e, http.MethodPost, "/chat/messages", `{"message":"hello"}`)
	require.NoError(t, h.SendMessage(c))
	var sent struct {
		Message    chatbot.Message     `json:"message"`
		Directives []chatbot.Directive `json:"directives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	require.Equal(t, "데이빗: hello", sent.Message.Text)
	require.Empty(t, sent.Directives)

	c, rec = jsonContext(e, http.MethodPost, "/chat/character", `{"character":"robot"}`)
	err := h.SelectCharacter(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestVoiceTranscriptQueuesPlayback(t *testing.T) {
	e := echo.New()
	h := newChatHandler()

	c, rec := jsonContext(e, http.MethodPost, "/chat/transcript", `{"transcript":"정산 방법?"}`)
	require.NoError(t, h.Transcript(c))

	var resp struct {
		Message    chatbot.Message     `json:"message"`
		Directives []chatbot.Directive `json:"directives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "예진이: 정산 방법?", resp.Message.Text)
	require.Len(t, resp.Directives, 1)
	require.Equal(t, chatbot.DirectivePlay, resp.Directives[0].Kind)
	require.Equal(t, "audio/mp3", resp.Directives[0].MimeType)
	require.NotNil(t, resp.Directives[0].Fallback)
	require.Equal(t, "예진이: 정산 방법?", resp.Directives[0].Fallback.Text)
	require.Equal(t, "ko-KR", resp.Directives[0].Fallback.Lang)
}
