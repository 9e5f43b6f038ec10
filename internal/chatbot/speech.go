package chatbot

import (
	"regexp"
	"strings"
)

const speechLang = "ko-KR"

var unspeakable = regexp.MustCompile("[\\x{1F300}-\\x{1F9FF}\\x{2600}-\\x{26FF}\\x{2700}-\\x{27BF}*#_~`]")

// CleanForSpeech drops emoji and markdown punctuation so the synthesizer
// does not read them aloud.
func CleanForSpeech(text string) string {
	return strings.TrimSpace(unspeakable.ReplaceAllString(text, ""))
}

// PickVoice returns the first voice whose language mentions lang, or nil.
func PickVoice(voices []Voice, lang string) *Voice {
	for _, v := range voices {
		if strings.Contains(v.Lang, lang) {
			return &v
		}
	}
	return nil
}

// widgetUtterance is the chat widget's voice: slightly quick and bright.
func widgetUtterance(text string, voices []Voice) Utterance {
	return Utterance{Text: text, Lang: speechLang, Rate: 1.1, Pitch: 1.2, Voice: PickVoice(voices, "ko")}
}

// fallbackUtterance is used when server speech is unavailable.
func fallbackUtterance(text string) Utterance {
	return Utterance{Text: text, Lang: speechLang, Rate: 1.0, Pitch: 1.0}
}
