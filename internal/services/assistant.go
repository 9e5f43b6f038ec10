package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"settlement_console/internal/models"
)

// AssistantService talks to the character chat, document chat and speech endpoints
type AssistantService struct {
	api *APIClient
}

func NewAssistantService(api *APIClient) *AssistantService {
	return &AssistantService{api: api}
}

func (s *AssistantService) CharacterChat(ctx context.Context, req models.CharacterChatRequest) (string, error) {
	var out models.CharacterChatResponse
	if err := s.api.FetchAPI(ctx, http.MethodPost, "/api/aesong-chat", req, &out); err != nil {
		return "", err
	}
	if out.Response == nil {
		return "", fmt.Errorf("%w: missing response", ErrMalformedResponse)
	}
	return *out.Response, nil
}

func (s *AssistantService) DocumentChat(ctx context.Context, req models.DocumentChatRequest) (string, error) {
	var out models.DocumentChatResponse
	if err := s.api.FetchAPI(ctx, http.MethodPost, "/api/rag/chat", req, &out); err != nil {
		return "", err
	}
	if out.Answer == nil {
		return "", fmt.Errorf("%w: missing answer", ErrMalformedResponse)
	}
	return *out.Answer, nil
}

// Synthesize returns decoded audio for text spoken in the character's voice.
func (s *AssistantService) Synthesize(ctx context.Context, text, character string) ([]byte, error) {
	var out models.SpeechResponse
	if err := s.api.FetchAPI(ctx, http.MethodPost, "/api/tts", models.SpeechRequest{Text: text, Character: character}, &out); err != nil {
		return nil, err
	}
	if out.AudioContent == "" {
		return nil, fmt.Errorf("%w: missing audioContent", ErrMalformedResponse)
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: audioContent: %v", ErrMalformedResponse, err)
	}
	return audio, nil
}
