package model

import (
	"time"
	"unicode/utf8"
)

// Tier is the severity classification of a crisis signal. Order matters:
// Immediate outranks Urgent outranks Concerning.
type Tier string

const (
	TierImmediate  Tier = "immediate"
	TierUrgent     Tier = "urgent"
	TierConcerning Tier = "concerning"
	TierNone       Tier = "none"
)

// Interrupts reports whether this tier must break the normal chat flow
// (cancel in-flight work, show the emergency view, lock input).
func (t Tier) Interrupts() bool {
	return t == TierImmediate || t == TierUrgent
}

const crisisSnippetMax = 200

// CrisisEvent is a write-once record of one classifier hit. Tier is never
// reassigned after the event is logged.
type CrisisEvent struct {
	Tier      Tier      `json:"tier"`
	Language  LangCode  `json:"language"`
	Timestamp time.Time `json:"timestamp"`
	PatternID string    `json:"pattern_id"`
	Snippet   string    `json:"snippet"`
}

func NewCrisisEvent(tier Tier, lang LangCode, patternID, text string) CrisisEvent {
	if len(text) > crisisSnippetMax {
		// Back up to a rune boundary so the snippet stays valid UTF-8.
		cut := crisisSnippetMax
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return CrisisEvent{
		Tier:      tier,
		Language:  lang,
		Timestamp: time.Now(),
		PatternID: patternID,
		Snippet:   text,
	}
}
