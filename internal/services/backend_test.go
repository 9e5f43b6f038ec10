package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newRecordingServer(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		reqs = append(reqs, rec)
		respond(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestBackendSaveChoosesMethodByID(t *testing.T) {
	srv, reqs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": 9}`)
	})
	b := NewBackend(NewAPIClient(srv.URL, time.Second))

	var created models.Project
	require.NoError(t, b.Save(context.Background(), models.KindProject, 0, models.ProjectInput{Name: "A"}, &created))
	require.NoError(t, b.Save(context.Background(), models.KindParticipant, 4, models.ParticipantInput{Name: "B"}, nil))

	require.Len(t, *reqs, 2)
	require.Equal(t, http.MethodPost, (*reqs)[0].Method)
	require.Equal(t, "/projects/", (*reqs)[0].Path)
	require.Equal(t, uint(9), created.ID)
	require.Equal(t, http.MethodPut, (*reqs)[1].Method)
	require.Equal(t, "/participants/4", (*reqs)[1].Path)
}

func TestBackendProjectParticipantCalls(t *testing.T) {
	srv, reqs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	b := NewBackend(NewAPIClient(srv.URL, time.Second))
	ctx := context.Background()

	rate := 12.5
	require.NoError(t, b.AttachParticipant(ctx, 3, models.ProjectParticipantInput{ParticipantID: 8, ProfitRate: &rate}))
	require.NoError(t, b.AttachParticipant(ctx, 3, models.ProjectParticipantInput{ParticipantID: 9}))
	require.NoError(t, b.UpdateParticipantRate(ctx, 3, 8, 20))
	require.NoError(t, b.DetachParticipant(ctx, 3, 9))

	got := *reqs
	require.Equal(t, "/projects/3/participants", got[0].Path)
	require.Equal(t, float64(8), got[0].Body["participant_id"])
	require.Equal(t, 12.5, got[0].Body["profit_rate"])
	require.Contains(t, got[1].Body, "profit_rate")
	require.Nil(t, got[1].Body["profit_rate"])
	require.Equal(t, http.MethodPut, got[2].Method)
	require.Equal(t, "/projects/3/participants/8", got[2].Path)
	require.Equal(t, http.MethodDelete, got[3].Method)
}

func TestBackendCalculateSettlement(t *testing.T) {
	srv, reqs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"project_id": 5, "project_name": "Portal", "total_profit": 1000,
			"settlements": [
				{"participant_id": 1, "participant_name": "Kim", "participant_code": "P001", "profit_rate": 30, "amount": 333.33},
				{"participant_id": 2, "participant_name": "Lee", "participant_code": "P002", "profit_rate": 60, "amount": 666.67}
			]
		}`)
	})
	b := NewBackend(NewAPIClient(srv.URL, time.Second))

	res, err := b.CalculateSettlement(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "/settlements/calculate", (*reqs)[0].Path)
	require.Equal(t, float64(5), (*reqs)[0].Body["project_id"])
	require.Len(t, res.Lines, 2)
	require.Equal(t, 333.33, res.Lines[0].Amount)
	require.Equal(t, models.Role(""), res.Lines[0].ParticipantRole)
}

func TestAssistantSynthesize(t *testing.T) {
	audio := []byte{0x49, 0x44, 0x33, 0x04}
	srv, reqs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.SpeechResponse{
			AudioContent: base64.StdEncoding.EncodeToString(audio),
			Voice:        "ko-KR-Standard-A",
		})
	})
	s := NewAssistantService(NewAPIClient(srv.URL, time.Second))

	got, err := s.Synthesize(context.Background(), "hello", "예진이")
	require.NoError(t, err)
	require.Equal(t, audio, got)
	require.Equal(t, "/api/tts", (*reqs)[0].Path)
	require.Equal(t, "예진이", (*reqs)[0].Body["character"])
}

func TestAssistantMissingFields(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"voice": "x"}`)
	})
	s := NewAssistantService(NewAPIClient(srv.URL, time.Second))
	ctx := context.Background()

	_, err := s.Synthesize(ctx, "hello", "예진이")
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = s.CharacterChat(ctx, models.CharacterChatRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = s.DocumentChat(ctx, models.DocumentChatRequest{Message: "hi", K: 10})
	require.ErrorIs(t, err, ErrMalformedResponse)
}
