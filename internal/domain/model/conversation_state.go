package model

import "strings"

type ConversationPhase string

const (
	PhaseEngagement  ConversationPhase = "engagement"
	PhaseExploration ConversationPhase = "exploration"
	PhaseProcessing  ConversationPhase = "processing"
	PhaseIntegration ConversationPhase = "integration"
)

const (
	EmotionNeutral = "neutral"
	EmotionAnxious = "anxious"
	EmotionSad     = "sad"
	EmotionAngry   = "angry"
	EmotionLonely  = "lonely"
	EmotionHopeful = "hopeful"
)

// ConversationState is a pure view over the message history. It is
// recomputed on every user message and never persisted on its own.
type ConversationState struct {
	Phase            ConversationPhase `json:"phase"`
	LastEmotion      string            `json:"last_emotion"`
	NeedsInspiration bool              `json:"needs_inspiration"`
	TopicsDiscussed  []string          `json:"topics_discussed"`
}

// topicKeywords maps a topic label to the fragments that imply it.
// Matching is a plain lowercase substring check.
var topicKeywords = map[string][]string{
	"family":        {"family", "mother", "father", "parents", "familia", "madre", "padre"},
	"work":          {"work", "job", "boss", "career", "trabajo", "jefe"},
	"school":        {"school", "exam", "class", "study", "escuela", "examen", "clase"},
	"relationships": {"friend", "partner", "relationship", "amigo", "pareja"},
	"health":        {"health", "doctor", "sick", "salud", "enfermo"},
	"sleep":         {"sleep", "insomnia", "tired", "dormir", "insomnio", "cansado"},
}

// Ordered so the derived topic list is deterministic.
var topicOrder = []string{"family", "work", "school", "relationships", "health", "sleep"}

func isNegativeEmotion(emotion string) bool {
	switch emotion {
	case EmotionAnxious, EmotionSad, EmotionAngry, EmotionLonely:
		return true
	}
	return false
}

// DeriveConversationState computes the current phase and emotional view
// from the count and emotion tags of prior user messages.
func DeriveConversationState(messages []Message) ConversationState {
	state := ConversationState{
		Phase:           PhaseEngagement,
		LastEmotion:     EmotionNeutral,
		TopicsDiscussed: []string{},
	}

	userCount := 0
	negativeRun := 0
	seen := map[string]bool{}
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		userCount++
		if m.Emotion != "" {
			state.LastEmotion = m.Emotion
		}
		if isNegativeEmotion(m.Emotion) {
			negativeRun++
		} else {
			negativeRun = 0
		}
		lower := strings.ToLower(m.Content)
		for topic, words := range topicKeywords {
			if seen[topic] {
				continue
			}
			for _, w := range words {
				if strings.Contains(lower, w) {
					seen[topic] = true
					break
				}
			}
		}
	}

	switch {
	case userCount >= 15:
		state.Phase = PhaseIntegration
	case userCount >= 8:
		state.Phase = PhaseProcessing
	case userCount >= 3:
		state.Phase = PhaseExploration
	}

	// Three negative user turns in a row mean the bot should offer
	// something uplifting with its next reply.
	state.NeedsInspiration = negativeRun >= 3

	for _, topic := range topicOrder {
		if seen[topic] {
			state.TopicsDiscussed = append(state.TopicsDiscussed, topic)
		}
	}
	return state
}
