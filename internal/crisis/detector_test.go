//go:build !integration

package crisis

import (
	"testing"

	"mentivio-widget/internal/domain/model"
)

func TestClassifySeverityOrder(t *testing.T) {
	d := NewDetector()

	t.Run("immediate outranks lower tiers in the same text", func(t *testing.T) {
		// Contains an Immediate hit plus Urgent and Concerning phrasings;
		// only the Immediate one may win.
		res := d.Classify("I feel hopeless, I keep hurting myself and I want to end my life", model.LangEnglish)
		if res.Tier != model.TierImmediate {
			t.Fatalf("expected immediate tier, got %s", res.Tier)
		}
		if res.PatternID != "end_my_life" {
			t.Errorf("expected pattern end_my_life, got %s", res.PatternID)
		}
	})

	t.Run("first matching pattern within a tier wins by declaration order", func(t *testing.T) {
		res := d.Classify("i will kill myself, it is better to end my life", model.LangEnglish)
		if res.PatternID != "kill_myself" {
			t.Errorf("expected first declared pattern kill_myself, got %s", res.PatternID)
		}
	})

	t.Run("urgent tier when no immediate pattern matches", func(t *testing.T) {
		res := d.Classify("lately I have been cutting myself again", model.LangEnglish)
		if res.Tier != model.TierUrgent {
			t.Fatalf("expected urgent tier, got %s", res.Tier)
		}
		if res.PatternID != "cut_myself" {
			t.Errorf("expected pattern cut_myself, got %s", res.PatternID)
		}
	})

	t.Run("concerning tier logs but does not interrupt", func(t *testing.T) {
		res := d.Classify("everything feels hopeless these days", model.LangEnglish)
		if res.Tier != model.TierConcerning {
			t.Fatalf("expected concerning tier, got %s", res.Tier)
		}
		if len(res.Intents) != 1 || res.Intents[0] != IntentLogCrisisEvent {
			t.Errorf("concerning tier should only log, got intents %v", res.Intents)
		}
	})

	t.Run("no crisis for ordinary worry", func(t *testing.T) {
		res := d.Classify("I feel kind of worried about my exam", model.LangEnglish)
		if res.Tier != model.TierNone {
			t.Fatalf("expected no crisis, got %s", res.Tier)
		}
		if res.IsCrisis() {
			t.Error("IsCrisis should be false")
		}
		if len(res.Intents) != 0 {
			t.Errorf("expected no intents, got %v", res.Intents)
		}
	})
}

func TestClassifyScenario(t *testing.T) {
	d := NewDetector()
	res := d.Classify("I want to end my life tonight", model.LangEnglish)
	if res.Tier != model.TierImmediate {
		t.Fatalf("expected immediate tier, got %s", res.Tier)
	}
	want := []Intent{
		IntentAbortInFlight,
		IntentClearTypingTimer,
		IntentLogCrisisEvent,
		IntentShowEmergencyView,
		IntentLockInput,
	}
	if len(res.Intents) != len(want) {
		t.Fatalf("expected %d intents, got %d", len(want), len(res.Intents))
	}
	for i, intent := range want {
		if res.Intents[i] != intent {
			t.Errorf("intent %d: expected %s, got %s", i, intent, res.Intents[i])
		}
	}
}

func TestClassifyNormalization(t *testing.T) {
	d := NewDetector()

	t.Run("case and whitespace are irrelevant", func(t *testing.T) {
		res := d.Classify("  I Want To   DIE  ", model.LangEnglish)
		if res.Tier != model.TierImmediate {
			t.Errorf("expected immediate tier, got %s", res.Tier)
		}
	})

	t.Run("empty text is never a crisis", func(t *testing.T) {
		if res := d.Classify("   ", model.LangEnglish); res.Tier != model.TierNone {
			t.Errorf("expected none, got %s", res.Tier)
		}
	})
}

func TestClassifyLanguages(t *testing.T) {
	d := NewDetector()

	t.Run("spanish table", func(t *testing.T) {
		res := d.Classify("ya no puedo más con esto", model.LangSpanish)
		if res.Tier != model.TierUrgent {
			t.Fatalf("expected urgent tier, got %s", res.Tier)
		}
		if res.PatternID != "no_puedo_mas" {
			t.Errorf("expected pattern no_puedo_mas, got %s", res.PatternID)
		}
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		res := d.Classify("I want to die", model.LangCode("fr"))
		if res.Tier != model.TierImmediate {
			t.Errorf("expected english fallback to classify, got %s", res.Tier)
		}
	})
}

func TestTagEmotion(t *testing.T) {
	cases := []struct {
		text string
		lang model.LangCode
		want string
	}{
		{"I feel kind of worried about my exam", model.LangEnglish, model.EmotionAnxious},
		{"I have been so sad since last week", model.LangEnglish, model.EmotionSad},
		{"I am furious at my boss", model.LangEnglish, model.EmotionAngry},
		{"I feel completely alone", model.LangEnglish, model.EmotionLonely},
		{"things are getting better lately", model.LangEnglish, model.EmotionHopeful},
		{"the weather is fine", model.LangEnglish, model.EmotionNeutral},
		{"estoy muy preocupada por todo", model.LangSpanish, model.EmotionAnxious},
	}
	for _, tc := range cases {
		if got := TagEmotion(tc.text, tc.lang); got != tc.want {
			t.Errorf("TagEmotion(%q, %s) = %s, want %s", tc.text, tc.lang, got, tc.want)
		}
	}
}
