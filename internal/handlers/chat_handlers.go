package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"settlement_console/internal/avatar"
	"settlement_console/internal/chatbot"
	"settlement_console/web/templates/shared"
)

const maxContextBytes = 1 << 20

// ChatHandler serves the floating chat widget and the voice assistant.
// Every response carries the directives the page must carry out.
type ChatHandler struct {
	hub     *chatbot.Hub
	avatars *avatar.Loader
}

func NewChatHandler(hub *chatbot.Hub, avatars *avatar.Loader) *ChatHandler {
	return &ChatHandler{hub: hub, avatars: avatars}
}

type chatResponse struct {
	Widget     *chatbot.WidgetSnapshot `json:"widget,omitempty"`
	Voice      *chatbot.VoiceSnapshot  `json:"voice,omitempty"`
	Message    *chatbot.Message        `json:"message,omitempty"`
	Scene      *avatar.Scene           `json:"scene,omitempty"`
	Directives []chatbot.Directive     `json:"directives"`
}

func (h *ChatHandler) session(c echo.Context) *chatbot.Session {
	return h.hub.Session(sessionID(c))
}

func respond(c echo.Context, s *chatbot.Session, resp chatResponse) error {
	resp.Directives = s.Directives.Drain()
	if resp.Directives == nil {
		resp.Directives = []chatbot.Directive{}
	}
	return c.JSON(http.StatusOK, resp)
}

func widgetOf(s *chatbot.Session) *chatbot.WidgetSnapshot {
	snap := s.Widget.Snapshot()
	return &snap
}

func voiceOf(s *chatbot.Session) *chatbot.VoiceSnapshot {
	snap := s.Voice.Snapshot()
	return &snap
}

// Panel describes the widget for server-rendered pages.
func (h *ChatHandler) Panel(c echo.Context) *shared.ChatPanel {
	s := h.session(c)
	current := s.Widget.Character()

	profiles := avatar.Characters()
	chars := make([]shared.ChatCharacter, 0, len(profiles))
	for _, p := range profiles {
		chars = append(chars, shared.ChatCharacter{Key: string(p.Character), Name: p.Name, Selected: p.Name == current})
	}
	return &shared.ChatPanel{
		Characters:     chars,
		QuickQuestions: chatbot.QuickQuestions,
		Greeting:       s.Widget.Greeting(),
	}
}

// Toggle opens or closes the panel
func (h *ChatHandler) Toggle(c echo.Context) error {
	s := h.session(c)
	s.Widget.Toggle()
	return respond(c, s, chatResponse{Widget: widgetOf(s)})
}

// ToggleVoice switches spoken replies on or off
func (h *ChatHandler) ToggleVoice(c echo.Context) error {
	s := h.session(c)
	s.Widget.ToggleVoice()
	return respond(c, s, chatResponse{Widget: widgetOf(s)})
}

type messageRequest struct {
	Message string `json:"message" form:"message"`
	Quick   *int   `json:"quick" form:"quick"`
}

// SendMessage submits typed text or a quick question
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message")
	}

	s := h.session(c)
	var (
		msg  chatbot.Message
		sent bool
	)
	if req.Quick != nil {
		msg, sent = s.Widget.SubmitQuick(c.Request().Context(), *req.Quick)
	} else {
		msg, sent = s.Widget.Submit(c.Request().Context(), req.Message)
	}

	resp := chatResponse{Widget: widgetOf(s)}
	if sent {
		resp.Message = &msg
	}
	return respond(c, s, resp)
}

type capabilitiesRequest struct {
	Voices  []chatbot.Voice `json:"voices"`
	CanPlay bool            `json:"can_play"`
	CanHear bool            `json:"can_hear"`
}

// Capabilities records what the page's browser can do for speech.
func (h *ChatHandler) Capabilities(c echo.Context) error {
	var req capabilitiesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid capabilities")
	}
	s := h.session(c)
	s.Directives.Report(req.Voices, req.CanPlay, req.CanHear)
	return c.NoContent(http.StatusNoContent)
}

// Record starts or stops listening for a voice question
func (h *ChatHandler) Record(c echo.Context) error {
	s := h.session(c)
	if _, err := s.Voice.ToggleRecording(); err != nil {
		if errors.Is(err, chatbot.ErrUnsupported) {
			return c.JSON(http.StatusNotImplemented, map[string]string{
				"detail": "Speech recognition isn't available in this browser.",
			})
		}
		return err
	}
	return respond(c, s, chatResponse{Voice: voiceOf(s)})
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Transcript answers a recognized utterance, or records why recognition ended.
func (h *ChatHandler) Transcript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid transcript")
	}

	s := h.session(c)
	resp := chatResponse{}
	if req.Error != "" || req.Transcript == "" {
		s.Voice.RecognitionEnded(req.Error)
	} else {
		msg := s.Voice.HandleTranscript(c.Request().Context(), req.Transcript)
		resp.Message = &msg
	}
	resp.Voice = voiceOf(s)
	return respond(c, s, resp)
}

type characterRequest struct {
	Character string `json:"character" form:"character"`
}

// SelectCharacter switches the assistant persona and returns its scene.
func (h *ChatHandler) SelectCharacter(c echo.Context) error {
	var req characterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid character")
	}
	p, err := avatar.Lookup(req.Character)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s := h.session(c)
	s.Widget.SetCharacter(p.Name, p.Greeting)
	s.Voice.SetCharacter(p.Name)
	scene := h.avatars.Load(c.Request().Context(), p)
	return respond(c, s, chatResponse{Widget: widgetOf(s), Voice: voiceOf(s), Scene: &scene})
}

// SetDocumentContext stores the request body as the session's document context.
func (h *ChatHandler) SetDocumentContext(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxContextBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid document context")
	}
	if err := h.hub.Contexts().SetDocumentContext(c.Request().Context(), sessionID(c), string(raw)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) ClearDocumentContext(c echo.Context) error {
	if err := h.hub.Contexts().ClearDocumentContext(c.Request().Context(), sessionID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Scene returns the avatar scene for ?character=, or the session's current one.
func (h *ChatHandler) Scene(c echo.Context) error {
	var (
		p   avatar.Profile
		err error
	)
	if key := c.QueryParam("character"); key != "" {
		p, err = avatar.Lookup(key)
	} else {
		p, err = avatar.LookupByName(h.session(c).Widget.Character())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, h.avatars.Load(c.Request().Context(), p))
}
