package crisis

import (
	"strings"

	"mentivio-widget/internal/domain/model"
)

// Intent is one side effect the dispatcher must execute for a hit. The
// classifier returns intents as data instead of firing callbacks so the
// side-effect set is testable independent of timing.
type Intent string

const (
	IntentAbortInFlight     Intent = "abort_in_flight"
	IntentClearTypingTimer  Intent = "clear_typing_timer"
	IntentLogCrisisEvent    Intent = "log_crisis_event"
	IntentShowEmergencyView Intent = "show_emergency_view"
	IntentLockInput         Intent = "lock_input"
)

// Result is the classification outcome. Tier is TierNone when nothing
// matched; Intents is empty in that case.
type Result struct {
	Tier      model.Tier
	PatternID string
	Intents   []Intent
}

func (r Result) IsCrisis() bool {
	return r.Tier != model.TierNone
}

// Detector is a pure classifier over declaration-ordered pattern tables.
// It has no error path: the worst it can do is miss a phrasing.
type Detector struct {
	tables map[model.LangCode]map[model.Tier][]Pattern
}

func NewDetector() *Detector {
	return &Detector{tables: patternTables}
}

// Classify checks tiers strictly in severity order; within a tier the
// first matching pattern by declaration order wins, and evaluation stops
// at the first hit in the highest matching tier.
func (d *Detector) Classify(text string, lang model.LangCode) Result {
	normalized := normalize(text)
	if normalized == "" {
		return Result{Tier: model.TierNone}
	}

	table := d.tables[lang]
	if table == nil {
		table = d.tables[model.LangEnglish]
	}
	for _, tier := range tierOrder {
		for _, p := range table[tier] {
			if p.Matcher.Match(normalized) {
				return Result{
					Tier:      tier,
					PatternID: p.ID,
					Intents:   intentsFor(tier),
				}
			}
		}
	}
	return Result{Tier: model.TierNone}
}

// intentsFor lists the ordered side effects per tier. Concerning logs but
// does not interrupt the chat flow.
func intentsFor(tier model.Tier) []Intent {
	if tier.Interrupts() {
		return []Intent{
			IntentAbortInFlight,
			IntentClearTypingTimer,
			IntentLogCrisisEvent,
			IntentShowEmergencyView,
			IntentLockInput,
		}
	}
	return []Intent{IntentLogCrisisEvent}
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
