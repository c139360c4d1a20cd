package crisis

import "mentivio-widget/internal/domain/model"

// tierOrder is the strict evaluation order: the first tier with any hit
// wins and the lower tiers are never consulted.
var tierOrder = []model.Tier{model.TierImmediate, model.TierUrgent, model.TierConcerning}

// The tables are a best-effort lexical filter, not a clinical instrument.
// Under-detection is a named limitation; nothing here throws.
var patternTables = map[model.LangCode]map[model.Tier][]Pattern{
	model.LangEnglish: {
		model.TierImmediate: {
			{model.TierImmediate, "kill_myself", Regex(`\bkill(ing)? myself\b`)},
			{model.TierImmediate, "end_my_life", Regex(`\bend(ing)? (my|this) life\b`)},
			{model.TierImmediate, "suicide", Regex(`\bsuicid(e|al)\b`)},
			{model.TierImmediate, "want_to_die", Regex(`\b(want|wanted|going) to die\b`)},
			{model.TierImmediate, "take_own_life", Regex(`\btake my own life\b`)},
			{model.TierImmediate, "better_off_dead", Regex(`\bbetter off dead\b`)},
			{model.TierImmediate, "not_wake_up", Regex(`\b(wish|hope) i (don'?t|never) wake up\b`)},
		},
		model.TierUrgent: {
			{model.TierUrgent, "self_harm", Regex(`\bself[- ]?harm\b`)},
			{model.TierUrgent, "hurt_myself", Regex(`\bhurt(ing)? myself\b`)},
			{model.TierUrgent, "cut_myself", Regex(`\bcut(ting)? myself\b`)},
			{model.TierUrgent, "no_reason_to_live", Regex(`\bno reason to (live|go on)\b`)},
			{model.TierUrgent, "cant_go_on", Regex(`\bcan'?t (go on|take it|do this) anymore\b`)},
			{model.TierUrgent, "disappear", Regex(`\b(want|wish) to disappear\b`)},
		},
		model.TierConcerning: {
			{model.TierConcerning, "hopeless", Regex(`\bhopeless\b`)},
			{model.TierConcerning, "worthless", Regex(`\bworthless\b`)},
			{model.TierConcerning, "no_one_cares", Regex(`\b(no ?one|nobody) (cares|would miss me)\b`)},
			{model.TierConcerning, "give_up", Regex(`\b(giving|give) up on everything\b`)},
			{model.TierConcerning, "hate_myself", Regex(`\bhate myself\b`)},
			{model.TierConcerning, "trapped", Regex(`\bfeel(ing)? trapped\b`)},
		},
	},
	model.LangSpanish: {
		model.TierImmediate: {
			{model.TierImmediate, "matarme", Regex(`\bmatarme\b`)},
			{model.TierImmediate, "quitarme_la_vida", Regex(`\bquitarme la vida\b`)},
			{model.TierImmediate, "suicidio", Regex(`\bsuicid(io|arme|a)\b`)},
			{model.TierImmediate, "quiero_morir", Regex(`\bquiero morir(me)?\b`)},
			{model.TierImmediate, "acabar_con_todo", Regex(`\bacabar con todo\b`)},
		},
		model.TierUrgent: {
			{model.TierUrgent, "hacerme_dano", Regex(`\bhacerme da(ñ|n)o\b`)},
			{model.TierUrgent, "cortarme", Regex(`\bcortarme\b`)},
			{model.TierUrgent, "sin_razon_para_vivir", Regex(`\bsin raz(ó|o)n para vivir\b`)},
			{model.TierUrgent, "no_puedo_mas", Regex(`\bno puedo m(á|a)s\b`)},
			{model.TierUrgent, "desaparecer", Regex(`\bquiero desaparecer\b`)},
		},
		model.TierConcerning: {
			{model.TierConcerning, "sin_esperanza", Regex(`\bsin esperanza\b`)},
			{model.TierConcerning, "no_valgo_nada", Regex(`\bno valgo nada\b`)},
			{model.TierConcerning, "nadie_me_quiere", Regex(`\bnadie me (quiere|extra(ñ|n)ar(í|i)a)\b`)},
			{model.TierConcerning, "me_odio", Regex(`\bme odio\b`)},
			{model.TierConcerning, "atrapado", Regex(`\bme siento atrapad(o|a)\b`)},
		},
	},
}
