package avatar

import (
	"errors"
	"fmt"
)

var ErrUnknownCharacter = errors.New("unknown character")

type Character string

const (
	Aesong Character = "aesong"
	David  Character = "david"
	Asol   Character = "asol"
)

const defaultEmoji = "🐶"

// Profile is how a character is framed in the viewer and introduced in chat.
type Profile struct {
	Character    Character `json:"character"`
	Name         string    `json:"name"`
	ModelPath    string    `json:"model_path"`
	Scale        float64   `json:"scale"`
	OffsetY      float64   `json:"offset_y"`
	InitialPitch float64   `json:"initial_pitch"`
	Emoji        string    `json:"emoji"`
	Greeting     string    `json:"greeting"`
}

var catalog = []Profile{
	{
		Character: Aesong,
		Name:      "예진이",
		ModelPath: "/api/models/AEsong.glb",
		Scale:     1.5,
		OffsetY:   -0.2,
		Emoji:     "🐶",
		Greeting:  "안녕하세요! 저는 예진이예요. 무엇을 도와드릴까요?",
	},
	{
		Character:    David,
		Name:         "데이빗",
		ModelPath:    "/api/models/David.glb",
		Scale:        1.5,
		OffsetY:      -0.8,
		InitialPitch: -0.2,
		Emoji:        "👨‍💻",
		Greeting:     "안녕하세요! 저는 데이빗입니다. AI 헬스케어 프로그램 개발에 대해 궁금하신 게 있으신가요?",
	},
	{
		Character: Asol,
		Name:      "PM",
		ModelPath: "/api/models/pmjung.glb",
		Scale:     1.5,
		OffsetY:   -0.8,
		Emoji:     "👨‍💼",
		Greeting:  "안녕하십니까, PM입니다. 프로젝트 관리나 팀 협업에 대해 도움이 필요하신가요?",
	},
}

// Characters lists every profile in menu order.
func Characters() []Profile {
	return append([]Profile(nil), catalog...)
}

func Lookup(name string) (Profile, error) {
	for _, p := range catalog {
		if string(p.Character) == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
}

// LookupByName finds a profile by its display name.
func LookupByName(display string) (Profile, error) {
	for _, p := range catalog {
		if p.Name == display {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCharacter, display)
}

// EmojiFor returns the fallback glyph for c, a puppy when c is unknown.
func EmojiFor(c Character) string {
	for _, p := range catalog {
		if p.Character == c && p.Emoji != "" {
			return p.Emoji
		}
	}
	return defaultEmoji
}
