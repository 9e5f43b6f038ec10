package avatar

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
)

var ErrInvalidGLB = errors.New("invalid glb")

// ModelInfo is what the viewer needs to know about a binary glTF before rendering it.
type ModelInfo struct {
	Version string   `json:"version"`
	Clips   []string `json:"clips"`
}

// ParseGLB decodes a glTF asset and lists its animation clips. Unnamed clips
// are numbered. Any decode failure, including a truncated or inconsistent
// container, is reported as ErrInvalidGLB.
func ParseGLB(data []byte) (ModelInfo, error) {
	if len(data) == 0 {
		return ModelInfo{}, fmt.Errorf("%w: empty asset", ErrInvalidGLB)
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return ModelInfo{}, fmt.Errorf("%w: %v", ErrInvalidGLB, err)
	}

	info := ModelInfo{Version: doc.Asset.Version, Clips: make([]string, 0, len(doc.Animations))}
	for i, a := range doc.Animations {
		name := ""
		if a != nil {
			name = a.Name
		}
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}
		info.Clips = append(info.Clips, name)
	}
	return info, nil
}
