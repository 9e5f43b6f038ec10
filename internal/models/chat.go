package models

type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one transcript entry
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// CharacterChatRequest is sent to the character chat endpoint.
type CharacterChatRequest struct {
	Message   string `json:"message"`
	Character string `json:"character"`
	Model     string `json:"model"`
}

type CharacterChatResponse struct {
	Response *string `json:"response"`
}

// DocumentChatRequest asks the retrieval-augmented endpoint about uploaded documents.
type DocumentChatRequest struct {
	Message         string `json:"message"`
	K               int    `json:"k"`
	DocumentContext []any  `json:"document_context"`
}

type DocumentChatResponse struct {
	Answer *string `json:"answer"`
}

type SpeechRequest struct {
	Text      string `json:"text"`
	Character string `json:"character"`
}

// SpeechResponse carries base64 audio.
type SpeechResponse struct {
	AudioContent string `json:"audioContent"`
	Voice        string `json:"voice"`
}
