package model

import (
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// LangCode is a BCP-47-ish two-letter language tag ("en", "es").
type LangCode string

const (
	LangEnglish LangCode = "en"
	LangSpanish LangCode = "es"
)

// Message is one turn of the conversation. The sequence is append-only;
// insertion order is display order, timestamps are assumed monotonic.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Language  LangCode  `json:"language"`
	Emotion   string    `json:"emotion"`
}

func NewUserMessage(content string, lang LangCode, emotion string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Language:  lang,
		Emotion:   emotion,
	}
}

func NewBotMessage(content string, lang LangCode, emotion string) Message {
	if emotion == "" {
		emotion = EmotionNeutral
	}
	return Message{
		Role:      RoleBot,
		Content:   content,
		Timestamp: time.Now(),
		Language:  lang,
		Emotion:   emotion,
	}
}

// Session identifies one conversation within one storage scope.
// The id is immutable until explicit rotation.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
}
