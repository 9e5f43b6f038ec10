package chatbot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"settlement_console/internal/models"
)

// ChatClient is the character chat endpoint.
type ChatClient interface {
	CharacterChat(ctx context.Context, req models.CharacterChatRequest) (string, error)
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a line in the visible chat log.
type Message struct {
	From   Sender `json:"from"`
	Text   string `json:"text"`
	Failed bool   `json:"failed,omitempty"`
}

const (
	voiceOnAnnouncement = "Voice output is on!"
	friendlyFailure     = "Sorry, I couldn't reach the assistant. Please try again in a moment."
)

// QuickQuestions are offered as one-tap prompts under the input.
var QuickQuestions = []string{
	"How is a settlement calculated?",
	"What are the default profit rates per role?",
	"How do I add a participant to a project?",
}

// WidgetConfig names the character and model sent with each question.
type WidgetConfig struct {
	Character    string
	Model        string
	SystemPrompt string
	Greeting     string
}

// Widget is the floating chat panel. The transcript starts with the system
// prompt and only grows.
type Widget struct {
	mu         sync.Mutex
	chat       ChatClient
	speaker    Speaker
	cfg        WidgetConfig
	logger     *slog.Logger
	transcript []models.ChatMessage
	messages   []Message
	open       bool
	voice      bool
	loading    bool
}

func NewWidget(chat ChatClient, speaker Speaker, cfg WidgetConfig, logger *slog.Logger) *Widget {
	if speaker == nil {
		speaker = noopSpeaker{}
	}
	w := &Widget{
		chat:       chat,
		speaker:    speaker,
		cfg:        cfg,
		logger:     logger,
		transcript: []models.ChatMessage{{Role: models.ChatRoleSystem, Content: cfg.SystemPrompt}},
	}
	if cfg.Greeting != "" {
		w.messages = append(w.messages, Message{From: SenderBot, Text: cfg.Greeting})
	}
	return w
}

// Toggle opens or closes the panel. Closing stops any speech.
func (w *Widget) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = !w.open
	if !w.open {
		w.speaker.Cancel()
	}
	return w.open
}

// ToggleVoice flips voice output. Turning it off silences current speech at once.
func (w *Widget) ToggleVoice() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.voice = !w.voice
	if w.voice {
		w.speakLocked(voiceOnAnnouncement)
	} else {
		w.speaker.Cancel()
	}
	return w.voice
}

// SetCharacter switches who answers and replaces the greeting.
func (w *Widget) SetCharacter(name, greeting string) {
	w.mu.Lock()
	w.cfg.Character = name
	w.mu.Unlock()
	w.Greet(greeting)
}

func (w *Widget) Character() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Character
}

// Greet replaces the opening bot line, used when the character changes.
func (w *Widget) Greet(greeting string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) > 0 && w.messages[0].From == SenderBot {
		w.messages[0].Text = greeting
		return
	}
	w.messages = append([]Message{{From: SenderBot, Text: greeting}}, w.messages...)
}

// Greeting is the opening bot line, or "" once the conversation has none.
func (w *Widget) Greeting() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) > 0 && w.messages[0].From == SenderBot {
		return w.messages[0].Text
	}
	return ""
}

// Submit sends a question. Blank input is ignored and reports false.
// Failures become a friendly local reply that is not added to the transcript.
func (w *Widget) Submit(ctx context.Context, text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, false
	}

	w.mu.Lock()
	w.messages = append(w.messages, Message{From: SenderUser, Text: text})
	w.transcript = append(w.transcript, models.ChatMessage{Role: models.ChatRoleUser, Content: text})
	w.loading = true
	req := models.CharacterChatRequest{Message: text, Character: w.cfg.Character, Model: w.cfg.Model}
	w.mu.Unlock()

	reply, err := w.chat.CharacterChat(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false

	if err != nil {
		w.logger.Error("chat request failed", "error", err)
		msg := Message{From: SenderBot, Text: friendlyFailure, Failed: true}
		w.messages = append(w.messages, msg)
		return msg, true
	}

	msg := Message{From: SenderBot, Text: reply}
	w.messages = append(w.messages, msg)
	w.transcript = append(w.transcript, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply})
	w.speakLocked(reply)
	return msg, true
}

// SubmitQuick sends one of the QuickQuestions by index.
func (w *Widget) SubmitQuick(ctx context.Context, i int) (Message, bool) {
	if i < 0 || i >= len(QuickQuestions) {
		return Message{}, false
	}
	return w.Submit(ctx, QuickQuestions[i])
}

// speakLocked cancels whatever is playing, then speaks text if voice is on.
func (w *Widget) speakLocked(text string) {
	if !w.voice {
		return
	}
	w.speaker.Cancel()
	clean := CleanForSpeech(text)
	if clean == "" {
		return
	}
	w.speaker.Speak(widgetUtterance(clean, w.speaker.Voices()))
}

// WidgetSnapshot is a copy of the widget's visible state.
type WidgetSnapshot struct {
	Open       bool                 `json:"open"`
	Voice      bool                 `json:"voice"`
	Loading    bool                 `json:"loading"`
	Messages   []Message            `json:"messages"`
	Transcript []models.ChatMessage `json:"-"`
}

func (w *Widget) Snapshot() WidgetSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WidgetSnapshot{
		Open:       w.open,
		Voice:      w.voice,
		Loading:    w.loading,
		Messages:   append([]Message(nil), w.messages...),
		Transcript: append([]models.ChatMessage(nil), w.transcript...),
	}
}
