package shared

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
)

func renderWith(t *testing.T, c templ.Component, children templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	ctx := context.Background()
	if children != nil {
		ctx = templ.WithChildren(ctx, children)
	}
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestLayoutWrapsChildren(t *testing.T) {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p id="body">hello</p>`)
		return err
	})
	meta := PageMeta{
		Title:       "Projects",
		ActiveNav:   "projects",
		Breadcrumbs: []Breadcrumb{{Title: "Home", URL: "/"}, {Title: "Projects"}},
		UserEmail:   "kim@example.com",
		UserUID:     "u1",
	}
	out := renderWith(t, Layout(meta, Alert("success", "Saved <ok>", 3*time.Second), nil), body)

	require.Contains(t, out, "<title>Projects | Settlement Console</title>")
	require.Contains(t, out, `class="tab active" data-tab="projects"`)
	require.Contains(t, out, `<a href="/">Home</a>`)
	require.Contains(t, out, `<li class="active" aria-current="page">Projects</li>`)
	require.Contains(t, out, `data-uid="u1">kim@example.com</span>`)
	require.Contains(t, out, `data-dismiss="3000">Saved &lt;ok&gt;`)
	require.NotContains(t, out, `id="chat-panel"`)

	alert := strings.Index(out, `id="alert-container"`)
	child := strings.Index(out, `<p id="body">hello</p>`)
	require.Positive(t, alert)
	require.Greater(t, child, alert)
}

func TestLayoutChatWidget(t *testing.T) {
	chat := &ChatPanel{
		Characters:     []ChatCharacter{{Key: "aesong", Name: "예진이", Selected: true}, {Key: "david", Name: "데이빗"}},
		QuickQuestions: []string{"How is profit split?"},
		Greeting:       "Hi!",
	}
	out := renderWith(t, Layout(PageMeta{Title: "Dashboard"}, nil, chat), nil)

	require.Contains(t, out, `<section id="chat-panel" class="chat-panel" hidden>`)
	require.Contains(t, out, `<option value="aesong" selected>예진이</option>`)
	require.Contains(t, out, `<option value="david">데이빗</option>`)
	require.Contains(t, out, `data-quick="0">How is profit split?</button>`)
	require.Contains(t, out, `<li class="msg bot">Hi!</li>`)
	require.NotContains(t, out, `class="breadcrumb"`)
}

func TestAlertSkipsEmptyMessage(t *testing.T) {
	require.Empty(t, renderWith(t, Alert("info", "", time.Second), nil))
}
