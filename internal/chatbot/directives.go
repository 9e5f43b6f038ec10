package chatbot

import (
	"context"
	"encoding/base64"
	"sync"
)

type DirectiveKind string

const (
	DirectiveSpeak  DirectiveKind = "speak"
	DirectiveCancel DirectiveKind = "cancel"
	DirectivePlay   DirectiveKind = "play"
	DirectiveListen DirectiveKind = "listen"
	DirectiveStop   DirectiveKind = "stop_listening"
)

// Directive is an instruction for the browser to carry out after a request.
type Directive struct {
	Kind      DirectiveKind `json:"kind"`
	Utterance *Utterance    `json:"utterance,omitempty"`
	Audio     string        `json:"audio,omitempty"`
	MimeType  string        `json:"mime_type,omitempty"`
	// Fallback is spoken when the page cannot play Audio.
	Fallback *Utterance `json:"fallback,omitempty"`
}

// Directives queues speech and audio work for the browser. It implements
// Speaker, AudioPlayer and Recognizer on behalf of a remote page.
type Directives struct {
	mu      sync.Mutex
	queue   []Directive
	voices  []Voice
	canPlay bool
	canHear bool
}

// NewDirectives describes the remote page's abilities as it reported them.
func NewDirectives(voices []Voice, canPlay, canHear bool) *Directives {
	return &Directives{voices: voices, canPlay: canPlay, canHear: canHear}
}

func (d *Directives) push(dir Directive) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, dir)
}

// Drain returns and clears the queued directives.
func (d *Directives) Drain() []Directive {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.queue
	d.queue = nil
	return out
}

// Report updates what the page says it supports.
func (d *Directives) Report(voices []Voice, canPlay, canHear bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if voices != nil {
		d.voices = voices
	}
	d.canPlay = canPlay
	d.canHear = canHear
}

func (d *Directives) Voices() []Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Voice(nil), d.voices...)
}

func (d *Directives) Speak(u Utterance) {
	d.push(Directive{Kind: DirectiveSpeak, Utterance: &u})
}

// Cancel also discards speech queued earlier in the same request.
func (d *Directives) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.queue[:0]
	for _, dir := range d.queue {
		if dir.Kind != DirectiveSpeak && dir.Kind != DirectivePlay {
			kept = append(kept, dir)
		}
	}
	d.queue = append(kept, Directive{Kind: DirectiveCancel})
}

func (d *Directives) Play(ctx context.Context, audio []byte, mimeType string, fallback Utterance) error {
	d.mu.Lock()
	ok := d.canPlay
	d.mu.Unlock()
	if !ok {
		return ErrUnsupported
	}
	d.push(Directive{
		Kind:     DirectivePlay,
		Audio:    base64.StdEncoding.EncodeToString(audio),
		MimeType: mimeType,
		Fallback: &fallback,
	})
	return nil
}

func (d *Directives) Start() error {
	d.mu.Lock()
	ok := d.canHear
	d.mu.Unlock()
	if !ok {
		return ErrUnsupported
	}
	d.push(Directive{Kind: DirectiveListen})
	return nil
}

func (d *Directives) Stop() error {
	d.push(Directive{Kind: DirectiveStop})
	return nil
}

// Capabilities exposes the queue as every client capability.
func (d *Directives) Capabilities() Capabilities {
	return Capabilities{Speaker: d, Player: d, Recognizer: d}
}
