package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"settlement_console/internal/models"
)

// Assistant is the remote side of the voice pipeline.
type Assistant interface {
	ChatClient
	DocumentChat(ctx context.Context, req models.DocumentChatRequest) (string, error)
	Synthesize(ctx context.Context, text, character string) ([]byte, error)
}

type VoiceConfig struct {
	// Character is the display name sent to the backend and shown in status lines.
	Character string
	Model     string
	TopK      int
}

const (
	statusIdle      = "Press the mic button and talk."
	statusListening = "Listening... go ahead."
	apology         = "Sorry, it's hard to answer right now."
)

// VoiceAssistant turns a spoken question into a spoken answer. Questions go to
// document chat when the session has documents, otherwise to character chat.
// Answers use server speech first and fall back to the local synthesizer.
type VoiceAssistant struct {
	mu        sync.Mutex
	assistant Assistant
	contexts  ContextStore
	caps      Capabilities
	cfg       VoiceConfig
	sessionID string
	logger    *slog.Logger

	recording bool
	status    string
	log       []Message
}

func NewVoiceAssistant(assistant Assistant, contexts ContextStore, caps Capabilities, cfg VoiceConfig, sessionID string, logger *slog.Logger) *VoiceAssistant {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.Model == "" {
		cfg.Model = "groq"
	}
	return &VoiceAssistant{
		assistant: assistant,
		contexts:  contexts,
		caps:      caps.withDefaults(),
		cfg:       cfg,
		sessionID: sessionID,
		logger:    logger,
		status:    statusIdle,
	}
}

// SetCharacter switches whose voice and name are used.
func (v *VoiceAssistant) SetCharacter(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg.Character = name
}

// ToggleRecording starts or stops listening. It returns ErrUnsupported when
// the client has no recognizer.
func (v *VoiceAssistant) ToggleRecording() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recording {
		if err := v.caps.Recognizer.Stop(); err != nil {
			return true, fmt.Errorf("stop recognition: %w", err)
		}
		v.recording = false
		v.status = statusIdle
		return false, nil
	}

	if err := v.caps.Recognizer.Start(); err != nil {
		if errors.Is(err, ErrUnsupported) {
			return false, err
		}
		return false, fmt.Errorf("start recognition: %w", err)
	}
	v.recording = true
	v.status = statusListening
	return true, nil
}

// RecognitionEnded marks the single utterance as finished, with or without a result.
func (v *VoiceAssistant) RecognitionEnded(errText string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recording = false
	if errText != "" {
		v.status = "Speech recognition error: " + errText
	} else if v.status == statusListening {
		v.status = statusIdle
	}
}

// HandleTranscript answers a recognized utterance and speaks the reply.
func (v *VoiceAssistant) HandleTranscript(ctx context.Context, transcript string) Message {
	transcript = strings.TrimSpace(transcript)

	v.mu.Lock()
	v.recording = false
	cfg := v.cfg
	if transcript == "" {
		v.status = statusIdle
		v.mu.Unlock()
		return Message{}
	}
	v.log = append(v.log, Message{From: SenderUser, Text: transcript})
	v.status = cfg.Character + " is thinking..."
	v.mu.Unlock()

	reply, err := v.ask(ctx, transcript, cfg)
	if err != nil {
		v.logger.Error("voice chat failed", "error", err)
		v.setStatus(fmt.Sprintf("Can't reach %s right now.", cfg.Character))
		v.caps.Speaker.Speak(fallbackUtterance(apology))
		return Message{From: SenderBot, Text: apology, Failed: true}
	}

	msg := Message{From: SenderBot, Text: reply}
	v.mu.Lock()
	v.log = append(v.log, msg)
	v.status = cfg.Character + " is speaking..."
	v.mu.Unlock()

	v.speak(ctx, reply, cfg.Character)
	v.setStatus(statusIdle)
	return msg
}

func (v *VoiceAssistant) ask(ctx context.Context, transcript string, cfg VoiceConfig) (string, error) {
	raw, found, err := v.contexts.DocumentContext(ctx, v.sessionID)
	if err != nil {
		v.logger.Warn("document context unavailable", "error", err)
		found = false
	}

	if found {
		if docs, ok := ParseDocumentContext(raw); ok {
			return v.assistant.DocumentChat(ctx, models.DocumentChatRequest{
				Message:         transcript,
				K:               cfg.TopK,
				DocumentContext: docs,
			})
		}
	}

	return v.assistant.CharacterChat(ctx, models.CharacterChatRequest{
		Message:   transcript,
		Character: cfg.Character,
		Model:     cfg.Model,
	})
}

// speak prefers server speech; any failure there falls back to the local synthesizer.
func (v *VoiceAssistant) speak(ctx context.Context, text, character string) {
	fallback := fallbackUtterance(CleanForSpeech(text))
	audio, err := v.assistant.Synthesize(ctx, text, character)
	if err == nil {
		err = v.caps.Player.Play(ctx, audio, "audio/mp3", fallback)
	}
	if err != nil {
		v.logger.Warn("server speech failed, using local synthesizer", "error", err)
		v.caps.Speaker.Speak(fallback)
	}
}

func (v *VoiceAssistant) setStatus(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = s
}

type VoiceSnapshot struct {
	Recording bool      `json:"recording"`
	Status    string    `json:"status"`
	Log       []Message `json:"log"`
}

func (v *VoiceAssistant) Snapshot() VoiceSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VoiceSnapshot{
		Recording: v.recording,
		Status:    v.status,
		Log:       append([]Message(nil), v.log...),
	}
}
