package chatbot

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by capabilities the client platform lacks.
var ErrUnsupported = errors.New("not supported on this client")

type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// Utterance is a request to speak text with the platform synthesizer.
type Utterance struct {
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
	Voice *Voice  `json:"voice,omitempty"`
}

// Speaker is the local speech synthesizer.
type Speaker interface {
	Voices() []Voice
	Speak(u Utterance)
	Cancel()
}

// AudioPlayer plays encoded audio, such as server-synthesized speech.
// A player that can only fail after returning, like a remote page, speaks
// fallback with its local synthesizer instead.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte, mimeType string, fallback Utterance) error
}

// Recognizer captures a single spoken utterance.
type Recognizer interface {
	Start() error
	Stop() error
}

type noopSpeaker struct{}

func (noopSpeaker) Voices() []Voice { return nil }
func (noopSpeaker) Speak(Utterance) {}
func (noopSpeaker) Cancel()         {}

type noopPlayer struct{}

func (noopPlayer) Play(context.Context, []byte, string, Utterance) error { return ErrUnsupported }

type noopRecognizer struct{}

func (noopRecognizer) Start() error { return ErrUnsupported }
func (noopRecognizer) Stop() error  { return nil }

// Capabilities bundles what the client platform can do. Nil members act as unsupported.
type Capabilities struct {
	Speaker    Speaker
	Player     AudioPlayer
	Recognizer Recognizer
}

func (c Capabilities) withDefaults() Capabilities {
	if c.Speaker == nil {
		c.Speaker = noopSpeaker{}
	}
	if c.Player == nil {
		c.Player = noopPlayer{}
	}
	if c.Recognizer == nil {
		c.Recognizer = noopRecognizer{}
	}
	return c
}
