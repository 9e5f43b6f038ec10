package avatar

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Downloader fetches a model asset by absolute URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Sprite is the flat emoji billboard shown when a model cannot be loaded.
type Sprite struct {
	Emoji  string     `json:"emoji"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Scale  [3]float64 `json:"scale"`
}

func fallbackSprite(c Character) *Sprite {
	return &Sprite{Emoji: EmojiFor(c), Width: 512, Height: 512, Scale: [3]float64{2, 2, 1}}
}

type Vec3 [3]float64

type Light struct {
	Kind      string  `json:"kind"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  *Vec3   `json:"position,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	Shadows   bool    `json:"shadows,omitempty"`
}

type Camera struct {
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position Vec3    `json:"position"`
	LookAt   Vec3    `json:"look_at"`
}

// Scene is everything the page needs to render one character.
type Scene struct {
	Profile  Profile    `json:"profile"`
	Status   string     `json:"status"`
	Model    *ModelInfo `json:"model,omitempty"`
	ModelURL string     `json:"model_url,omitempty"`
	Fallback *Sprite    `json:"fallback,omitempty"`
	Rotation Rotation   `json:"rotation"`
	Motion   Motion     `json:"motion"`
	DragRate float64    `json:"drag_rate"`
	MaxPitch float64    `json:"max_pitch"`
	Camera   Camera     `json:"camera"`
	Lights   []Light    `json:"lights"`
}

var defaultCamera = Camera{FOV: 50, Near: 0.1, Far: 1000, Position: Vec3{0, 0.5, 2.5}}

func defaultLights() []Light {
	return []Light{
		{Kind: "ambient", Color: "#ffffff", Intensity: 0.6},
		{Kind: "directional", Color: "#ffffff", Intensity: 0.8, Position: &Vec3{5, 10, 5}, Shadows: true},
		{Kind: "point", Color: "#ff69b4", Intensity: 1, Position: &Vec3{-3, 3, 3}, Distance: 100},
		{Kind: "point", Color: "#87ceeb", Intensity: 1, Position: &Vec3{3, 3, -3}, Distance: 100},
	}
}

// Loader inspects model assets so a broken model degrades to the emoji sprite
// before the page tries to render it.
// Successful inspections are remembered; failures are retried on the next load.
type Loader struct {
	dl      Downloader
	baseURL string
	logger  *slog.Logger

	mu        sync.Mutex
	inspected map[Character]ModelInfo
}

func NewLoader(dl Downloader, baseURL string, logger *slog.Logger) *Loader {
	return &Loader{
		dl:        dl,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
		inspected: make(map[Character]ModelInfo),
	}
}

// Load builds the scene for p. The model URL stays relative so the page
// fetches it through the console's asset proxy.
func (l *Loader) Load(ctx context.Context, p Profile) Scene {
	scene := Scene{
		Profile:  p,
		Rotation: restRotation(p),
		Motion:   IdleMotion,
		DragRate: dragRadiansPerPixel,
		MaxPitch: maxPitch,
		Camera:   defaultCamera,
		Lights:   defaultLights(),
	}

	info, err := l.inspect(ctx, p)
	if err == nil {
		scene.Model = &info
		scene.ModelURL = p.ModelPath
		scene.Status = p.Name + " ready"
		return scene
	}

	l.logger.Warn("model unavailable, using emoji", "character", p.Character, "path", p.ModelPath, "error", err)
	scene.Fallback = fallbackSprite(p.Character)
	scene.Status = "Couldn't load " + p.Name
	return scene
}

func (l *Loader) inspect(ctx context.Context, p Profile) (ModelInfo, error) {
	l.mu.Lock()
	info, ok := l.inspected[p.Character]
	l.mu.Unlock()
	if ok {
		return info, nil
	}

	data, err := l.dl.Download(ctx, l.baseURL+p.ModelPath)
	if err != nil {
		return ModelInfo{}, err
	}
	info, err = ParseGLB(data)
	if err != nil {
		return ModelInfo{}, err
	}
	l.logger.Info("model inspected", "character", p.Character, "bytes", len(data), "clips", len(info.Clips))

	l.mu.Lock()
	l.inspected[p.Character] = info
	l.mu.Unlock()
	return info, nil
}
