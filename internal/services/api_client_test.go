package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchAPIDecodesSuccess(t *testing.T) {
	var gotContentType, gotMethod, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": 3, "name": "Kim"}`)
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL+"/api/", time.Second)

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	err := client.FetchAPI(context.Background(), http.MethodPost, "/participants/", map[string]string{"name": "Kim"}, &out)
	require.NoError(t, err)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/participants/", gotPath)
	require.Equal(t, "Kim", gotBody["name"])
	require.Equal(t, 3, out.ID)
}

func TestFetchAPISetsContentTypeWithoutBody(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, time.Second)
	require.NoError(t, client.FetchAPI(context.Background(), http.MethodDelete, "/projects/1", nil, nil))
	require.Equal(t, "application/json", gotContentType)
}

func TestFetchAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "string detail",
			status:     http.StatusBadRequest,
			body:       `{"detail": "Participant already in project"}`,
			wantDetail: "Participant already in project",
		},
		{
			name:       "structured detail",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail": [{"loc": ["body", "name"], "msg": "field required"}]}`,
			wantDetail: `[{"loc":["body","name"],"msg":"field required"}]`,
		},
		{
			name:       "no detail",
			status:     http.StatusInternalServerError,
			body:       `{"error": "boom"}`,
			wantDetail: "request failed",
		},
		{
			name:       "not json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantDetail: "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewAPIClient(srv.URL, time.Second)
			err := client.FetchAPI(context.Background(), http.MethodGet, "/projects/", nil, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantDetail, apiErr.Error())
		})
	}
}

func TestFetchAPIMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": "not-a-number"}`)
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	err := NewAPIClient(srv.URL, time.Second).FetchAPI(context.Background(), http.MethodGet, "/x", nil, &out)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFetchAPITransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewAPIClient(url, time.Second).FetchAPI(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}
