package avatar

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbHeaderLen = 12
)

func glbHeader(t *testing.T, total uint32) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint32{glbMagic, 2, total} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	return &buf
}

func buildGLB(t *testing.T, doc string) []byte {
	t.Helper()
	jsonChunk := []byte(doc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}

	buf := glbHeader(t, uint32(glbHeaderLen+8+len(jsonChunk)))
	for _, v := range []uint32{uint32(len(jsonChunk)), glbChunkJSON} {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
	}
	buf.Write(jsonChunk)
	return buf.Bytes()
}

func TestParseGLBClips(t *testing.T) {
	data := buildGLB(t, `{"asset":{"version":"2.0"},"animations":[{"name":"Idle"},{},{"name":"Wave"}]}`)

	info, err := ParseGLB(data)
	require.NoError(t, err)
	require.Equal(t, "2.0", info.Version)
	require.Equal(t, []string{"Idle", "animation_1", "Wave"}, info.Clips)
}

func TestParseGLBNoAnimations(t *testing.T) {
	info, err := ParseGLB(buildGLB(t, `{"asset":{"version":"2.0"}}`))
	require.NoError(t, err)
	require.Empty(t, info.Clips)
}

func TestParseGLBRejectsGarbage(t *testing.T) {
	undersized := glbHeader(t, 4)
	undersized.Write(make([]byte, 8))

	tests := map[string][]byte{
		"empty":                   nil,
		"short":                   []byte("glTF"),
		"not glb":                 []byte("<!DOCTYPE html><html>not found</html>"),
		"truncated":               buildGLB(t, `{"asset":{}}`)[:20],
		"length below header":     undersized.Bytes(),
		"length past end of data": glbHeader(t, 4096).Bytes(),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGLB(data)
			require.ErrorIs(t, err, ErrInvalidGLB)
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("david")
	require.NoError(t, err)
	require.Equal(t, "데이빗", p.Name)
	require.Equal(t, "/api/models/David.glb", p.ModelPath)
	require.Equal(t, -0.8, p.OffsetY)
	require.Equal(t, -0.2, p.InitialPitch)

	p, err = LookupByName("PM")
	require.NoError(t, err)
	require.Equal(t, Asol, p.Character)
	require.Equal(t, "/api/models/pmjung.glb", p.ModelPath)

	_, err = Lookup("robot")
	require.ErrorIs(t, err, ErrUnknownCharacter)

	require.Len(t, Characters(), 3)
	require.Equal(t, "🐶", EmojiFor("robot"))
	require.Equal(t, "👨‍💼", EmojiFor(Asol))
}

func TestLoaderSceneCarriesRigParameters(t *testing.T) {
	l := NewLoader(&fakeDownloader{err: errors.New("offline")}, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p, _ := Lookup("aesong")

	scene := l.Load(context.Background(), p)
	require.Equal(t, Rotation{}, scene.Rotation)
	require.Equal(t, IdleMotion, scene.Motion)
	require.Equal(t, 0.01, scene.DragRate)
	require.Equal(t, 1.0, scene.MaxPitch)
	require.Equal(t, Vec3{0, 0.5, 2.5}, scene.Camera.Position)
}

type fakeDownloader struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeDownloader) Download(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

func TestLoaderInspectsModel(t *testing.T) {
	dl := &fakeDownloader{data: buildGLB(t, `{"asset":{"version":"2.0"},"animations":[{"name":"Idle"}]}`)}
	l := NewLoader(dl, "http://assets:8000/", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p, _ := Lookup("aesong")

	scene := l.Load(context.Background(), p)
	require.Equal(t, []string{"http://assets:8000/api/models/AEsong.glb"}, dl.urls)
	require.NotNil(t, scene.Model)
	require.Equal(t, []string{"Idle"}, scene.Model.Clips)
	require.Equal(t, "/api/models/AEsong.glb", scene.ModelURL)
	require.Nil(t, scene.Fallback)
	require.Equal(t, "예진이 ready", scene.Status)
	require.Len(t, scene.Lights, 4)

	l.Load(context.Background(), p)
	require.Len(t, dl.urls, 1)
}

func TestLoaderFallsBackToEmoji(t *testing.T) {
	l := NewLoader(&fakeDownloader{err: errors.New("404")}, "http://assets:8000", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p, _ := Lookup("david")

	scene := l.Load(context.Background(), p)
	require.Nil(t, scene.Model)
	require.Empty(t, scene.ModelURL)
	require.Equal(t, &Sprite{Emoji: "👨‍💻", Width: 512, Height: 512, Scale: [3]float64{2, 2, 1}}, scene.Fallback)
	require.Equal(t, "Couldn't load 데이빗", scene.Status)
	require.InDelta(t, -0.2, scene.Rotation.X, 1e-9)
}
