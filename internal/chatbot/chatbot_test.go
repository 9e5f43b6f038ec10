package chatbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"settlement_console/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSpeaker struct {
	mu      sync.Mutex
	voices  []Voice
	spoken  []Utterance
	cancels int
}

func (s *recordingSpeaker) Voices() []Voice { return s.voices }

func (s *recordingSpeaker) Speak(u Utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u)
}

func (s *recordingSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

type recordingPlayer struct {
	played    [][]byte
	fallbacks []Utterance
	err       error
}

func (p *recordingPlayer) Play(_ context.Context, audio []byte, mimeType string, fallback Utterance) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, audio)
	p.fallbacks = append(p.fallbacks, fallback)
	return nil
}

type fakeAssistant struct {
	chatReply  string
	chatErr    error
	docReply   string
	audio      []byte
	synthErr   error
	chatReqs   []models.CharacterChatRequest
	docReqs    []models.DocumentChatRequest
	synthTexts []string
}

func (a *fakeAssistant) CharacterChat(_ context.Context, req models.CharacterChatRequest) (string, error) {
	a.chatReqs = append(a.chatReqs, req)
	return a.chatReply, a.chatErr
}

func (a *fakeAssistant) DocumentChat(_ context.Context, req models.DocumentChatRequest) (string, error) {
	a.docReqs = append(a.docReqs, req)
	return a.docReply, nil
}

func (a *fakeAssistant) Synthesize(_ context.Context, text, character string) ([]byte, error) {
	a.synthTexts = append(a.synthTexts, text)
	return a.audio, a.synthErr
}

func newWidget(a ChatClient, s Speaker) *Widget {
	return NewWidget(a, s, WidgetConfig{Character: "예진이", Model: "groq", SystemPrompt: "be kind"}, discardLogger())
}

func TestCleanForSpeech(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello 😀 world", "Hello  world"},
		{"**bold** and _it_ ~x~ `code` #tag", "bold and it x code tag"},
		{"☀ sunny ✨", "sunny"},
		{"  🐶🐶  ", ""},
		{"안녕하세요!", "안녕하세요!"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CleanForSpeech(tt.in), tt.in)
	}
}

func TestWidgetTranscriptSeededWithSystemPrompt(t *testing.T) {
	w := newWidget(&fakeAssistant{}, nil)
	snap := w.Snapshot()
	require.Len(t, snap.Transcript, 1)
	require.Equal(t, models.ChatRoleSystem, snap.Transcript[0].Role)
	require.Equal(t, "be kind", snap.Transcript[0].Content)
}

func TestWidgetSubmit(t *testing.T) {
	a := &fakeAssistant{chatReply: "Settlements split profit by rate."}
	w := newWidget(a, nil)

	_, sent := w.Submit(context.Background(), "   ")
	require.False(t, sent)
	require.Empty(t, a.chatReqs)

	msg, sent := w.Submit(context.Background(), "  how?  ")
	require.True(t, sent)
	require.Equal(t, "Settlements split profit by rate.", msg.Text)
	require.Equal(t, models.CharacterChatRequest{Message: "how?", Character: "예진이", Model: "groq"}, a.chatReqs[0])

	snap := w.Snapshot()
	require.False(t, snap.Loading)
	require.Len(t, snap.Transcript, 3)
	require.Equal(t, models.ChatRoleUser, snap.Transcript[1].Role)
	require.Equal(t, models.ChatRoleAssistant, snap.Transcript[2].Role)
	require.Len(t, snap.Messages, 2)
}

func TestWidgetFailureIsFriendlyAndNotRecorded(t *testing.T) {
	a := &fakeAssistant{chatErr: errors.New("connection refused")}
	w := newWidget(a, nil)

	msg, sent := w.Submit(context.Background(), "hello")
	require.True(t, sent)
	require.True(t, msg.Failed)
	require.Equal(t, friendlyFailure, msg.Text)

	snap := w.Snapshot()
	require.Len(t, snap.Transcript, 2)
	require.Equal(t, models.ChatRoleUser, snap.Transcript[1].Role)
	require.False(t, snap.Loading)
}

func TestWidgetVoiceOffCancelsAndSuppresses(t *testing.T) {
	s := &recordingSpeaker{voices: []Voice{{Name: "en", Lang: "en-US"}, {Name: "Yuna", Lang: "ko-KR"}}}
	a := &fakeAssistant{chatReply: "**Hi** 😀"}
	w := newWidget(a, s)

	require.True(t, w.ToggleVoice())
	require.Len(t, s.spoken, 1)
	require.Equal(t, voiceOnAnnouncement, s.spoken[0].Text)

	w.Submit(context.Background(), "hello")
	require.Len(t, s.spoken, 2)
	u := s.spoken[1]
	require.Equal(t, "Hi", u.Text)
	require.Equal(t, "ko-KR", u.Lang)
	require.Equal(t, 1.1, u.Rate)
	require.Equal(t, 1.2, u.Pitch)
	require.Equal(t, "Yuna", u.Voice.Name)

	cancelsBefore := s.cancels
	require.False(t, w.ToggleVoice())
	require.Equal(t, cancelsBefore+1, s.cancels)

	w.Submit(context.Background(), "again")
	require.Len(t, s.spoken, 2)
}

func TestWidgetClosingStopsSpeech(t *testing.T) {
	s := &recordingSpeaker{}
	w := newWidget(&fakeAssistant{}, s)

	require.True(t, w.Toggle())
	require.Equal(t, 0, s.cancels)
	require.False(t, w.Toggle())
	require.Equal(t, 1, s.cancels)
}

func TestParseDocumentContext(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []any
		present bool
	}{
		{"empty", "", nil, false},
		{"array", `["a.pdf", "b.pdf"]`, []any{"a.pdf", "b.pdf"}, true},
		{"empty array", `[]`, []any{}, false},
		{"null", `null`, nil, false},
		{"json string", `"a.pdf"`, []any{"a.pdf"}, true},
		{"plain text", `a.pdf`, []any{"a.pdf"}, true},
		{"object", `{"id": 1}`, []any{map[string]any{"id": float64(1)}}, true},
		{"zero", `0`, []any{float64(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present := ParseDocumentContext(tt.raw)
			require.Equal(t, tt.present, present)
			if tt.present {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVoiceDispatchesByDocumentContext(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(0)
	a := &fakeAssistant{chatReply: "character answer", docReply: "document answer", audio: []byte("mp3")}
	player := &recordingPlayer{}
	caps := Capabilities{Speaker: &recordingSpeaker{}, Player: player}

	v := NewVoiceAssistant(a, store, caps, VoiceConfig{Character: "예진이"}, "s1", discardLogger())

	msg := v.HandleTranscript(ctx, "what is the rate?")
	require.Equal(t, "character answer", msg.Text)
	require.Len(t, a.chatReqs, 1)
	require.Equal(t, "groq", a.chatReqs[0].Model)
	require.Empty(t, a.docReqs)

	require.NoError(t, store.SetDocumentContext(ctx, "s1", `["contract.pdf"]`))
	msg = v.HandleTranscript(ctx, "what does the contract say?")
	require.Equal(t, "document answer", msg.Text)
	require.Len(t, a.docReqs, 1)
	require.Equal(t, 10, a.docReqs[0].K)
	require.Equal(t, []any{"contract.pdf"}, a.docReqs[0].DocumentContext)

	require.Equal(t, [][]byte{[]byte("mp3"), []byte("mp3")}, player.played)
	require.Equal(t, statusIdle, v.Snapshot().Status)
	require.Len(t, v.Snapshot().Log, 4)
}

func TestVoiceFallsBackToLocalSpeech(t *testing.T) {
	speaker := &recordingSpeaker{}
	a := &fakeAssistant{chatReply: "hello ✨", synthErr: errors.New("missing audioContent")}
	v := NewVoiceAssistant(a, NewMemoryContextStore(0), Capabilities{Speaker: speaker}, VoiceConfig{Character: "데이빗"}, "s1", discardLogger())

	v.HandleTranscript(context.Background(), "hi")
	require.Len(t, speaker.spoken, 1)
	require.Equal(t, "hello", speaker.spoken[0].Text)
	require.Equal(t, 1.0, speaker.spoken[0].Rate)
	require.Equal(t, 1.0, speaker.spoken[0].Pitch)
	require.Equal(t, "ko-KR", speaker.spoken[0].Lang)
}

func TestVoicePlaybackFailureFallsBack(t *testing.T) {
	speaker := &recordingSpeaker{}
	a := &fakeAssistant{chatReply: "hello", audio: []byte("mp3")}
	caps := Capabilities{Speaker: speaker, Player: &recordingPlayer{err: errors.New("autoplay blocked")}}
	v := NewVoiceAssistant(a, NewMemoryContextStore(0), caps, VoiceConfig{Character: "PM"}, "s1", discardLogger())

	v.HandleTranscript(context.Background(), "hi")
	require.Len(t, speaker.spoken, 1)
}

func TestPlayDirectiveCarriesLocalFallback(t *testing.T) {
	dirs := NewDirectives(nil, true, false)
	a := &fakeAssistant{chatReply: "**hello** ✨", audio: []byte("mp3")}
	v := NewVoiceAssistant(a, NewMemoryContextStore(0), dirs.Capabilities(), VoiceConfig{Character: "PM"}, "s1", discardLogger())

	v.HandleTranscript(context.Background(), "hi")

	got := dirs.Drain()
	require.Len(t, got, 1)
	require.Equal(t, DirectivePlay, got[0].Kind)
	require.Equal(t, "bXAz", got[0].Audio)
	require.Equal(t, "audio/mp3", got[0].MimeType)
	require.Equal(t, &Utterance{Text: "hello", Lang: "ko-KR", Rate: 1.0, Pitch: 1.0}, got[0].Fallback)
}

func TestVoiceChatFailureApologizes(t *testing.T) {
	speaker := &recordingSpeaker{}
	a := &fakeAssistant{chatErr: errors.New("503")}
	v := NewVoiceAssistant(a, NewMemoryContextStore(0), Capabilities{Speaker: speaker}, VoiceConfig{Character: "예진이"}, "s1", discardLogger())

	msg := v.HandleTranscript(context.Background(), "hi")
	require.True(t, msg.Failed)
	require.Equal(t, "Can't reach 예진이 right now.", v.Snapshot().Status)
	require.Len(t, speaker.spoken, 1)
	require.Equal(t, apology, speaker.spoken[0].Text)
	require.Empty(t, a.synthTexts)
}

func TestToggleRecording(t *testing.T) {
	v := NewVoiceAssistant(&fakeAssistant{}, NewMemoryContextStore(0), Capabilities{}, VoiceConfig{}, "s1", discardLogger())
	_, err := v.ToggleRecording()
	require.ErrorIs(t, err, ErrUnsupported)

	dirs := NewDirectives(nil, true, true)
	v = NewVoiceAssistant(&fakeAssistant{}, NewMemoryContextStore(0), dirs.Capabilities(), VoiceConfig{}, "s1", discardLogger())

	on, err := v.ToggleRecording()
	require.NoError(t, err)
	require.True(t, on)
	require.Equal(t, statusListening, v.Snapshot().Status)

	on, err = v.ToggleRecording()
	require.NoError(t, err)
	require.False(t, on)

	kinds := []DirectiveKind{}
	for _, d := range dirs.Drain() {
		kinds = append(kinds, d.Kind)
	}
	require.Equal(t, []DirectiveKind{DirectiveListen, DirectiveStop}, kinds)
}

func TestDirectivesCancelDropsQueuedSpeech(t *testing.T) {
	d := NewDirectives(nil, true, false)
	d.Speak(Utterance{Text: "one"})
	require.NoError(t, d.Play(context.Background(), []byte{1}, "audio/mp3", Utterance{Text: "one"}))
	d.Cancel()
	d.Speak(Utterance{Text: "two"})

	got := d.Drain()
	require.Len(t, got, 2)
	require.Equal(t, DirectiveCancel, got[0].Kind)
	require.Equal(t, "two", got[1].Utterance.Text)
	require.Empty(t, d.Drain())

	require.ErrorIs(t, d.Start(), ErrUnsupported)
}

func TestResolveAPIBase(t *testing.T) {
	mustParse := func(s string) *url.URL {
		u, err := url.Parse(s)
		require.NoError(t, err)
		return u
	}

	tests := []struct {
		name     string
		explicit string
		page     string
		want     string
	}{
		{"explicit wins", "https://api.example.com/", "https://3000-x.sandbox.novita.ai", "https://api.example.com"},
		{"sandbox rewrite", "", "https://3000-abc123.sandbox.novita.ai/console", "https://8000-abc123.sandbox.novita.ai"},
		{"dashed host without prefix", "", "https://my-host.dev", "https://my-host.dev"},
		{"local", "", "http://localhost:8080/dashboard", "http://localhost:8000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveAPIBase(tt.explicit, mustParse(tt.page)))
		})
	}
}

func TestHubReusesSessions(t *testing.T) {
	h := NewHub(&fakeAssistant{}, NewMemoryContextStore(0), HubConfig{}, discardLogger())
	a := h.Session("abc")
	require.Same(t, a, h.Session("abc"))
	require.NotSame(t, a, h.Session("def"))
}

func TestHubSweepsIdleSessions(t *testing.T) {
	h := NewHub(&fakeAssistant{}, NewMemoryContextStore(0), HubConfig{}, discardLogger())
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	h.Session("old")
	now = now.Add(2 * time.Hour)
	h.Session("fresh")

	require.Equal(t, 1, h.Sweep(time.Hour))
	require.Equal(t, 0, h.Sweep(time.Hour))
}

func TestMemoryContextStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(time.Hour)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SetDocumentContext(ctx, "old", `["a.pdf"]`))
	now = now.Add(50 * time.Minute)
	require.NoError(t, store.SetDocumentContext(ctx, "fresh", `["b.pdf"]`))

	raw, ok, err := store.DocumentContext(ctx, "old")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["a.pdf"]`, raw)

	now = now.Add(20 * time.Minute)
	_, ok, err = store.DocumentContext(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok)

	h := NewHub(&fakeAssistant{}, store, HubConfig{}, discardLogger())
	h.Sweep(time.Hour)
	require.Len(t, store.data, 1)
	_, ok, _ = store.DocumentContext(ctx, "fresh")
	require.True(t, ok)
}

func TestMemoryContextStoreWithoutTTLKeeps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryContextStore(0)
	require.NoError(t, store.SetDocumentContext(ctx, "s1", "notes"))
	store.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

	require.Equal(t, 0, store.Sweep())
	raw, ok, err := store.DocumentContext(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "notes", raw)

	require.NoError(t, store.ClearDocumentContext(ctx, "s1"))
	_, ok, _ = store.DocumentContext(ctx, "s1")
	require.False(t, ok)
}
