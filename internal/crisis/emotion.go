package crisis

import "mentivio-widget/internal/domain/model"

// Emotion tagging shares the lexical machinery of the detector but is a
// separate, softer concern: it feeds Message.Emotion and the derived
// conversation state, never the safety flow.

type emotionPattern struct {
	emotion string
	matcher Matcher
}

var emotionTables = map[model.LangCode][]emotionPattern{
	model.LangEnglish: {
		{model.EmotionAnxious, Regex(`\b(anxious|anxiety|worried|worry|nervous|panic|stressed|overwhelmed)\b`)},
		{model.EmotionSad, Regex(`\b(sad|depressed|crying|cried|miserable|down|grief|heartbroken)\b`)},
		{model.EmotionAngry, Regex(`\b(angry|furious|mad at|frustrated|rage)\b`)},
		{model.EmotionLonely, Regex(`\b(lonely|alone|isolated|no friends)\b`)},
		{model.EmotionHopeful, Regex(`\b(hopeful|better|improving|grateful|thankful|optimistic)\b`)},
	},
	model.LangSpanish: {
		{model.EmotionAnxious, Regex(`\b(ansios|preocupad|nervios|p(á|a)nico|estresad|agobiad)`)},
		{model.EmotionSad, Regex(`\b(triste|deprimid|llorand|llor(é|e)|miserable|desanimad)`)},
		{model.EmotionAngry, Regex(`\b(enojad|furios|rabia|frustrad)`)},
		{model.EmotionLonely, Regex(`\b(sol(o|a) me siento|solitari|aislad|sin amigos)`)},
		{model.EmotionHopeful, Regex(`\b(esperanzad|mejor|agradecid|optimista)`)},
	},
}

// TagEmotion returns the first emotion whose lexicon matches, in
// declaration order, defaulting to neutral.
func TagEmotion(text string, lang model.LangCode) string {
	normalized := normalize(text)
	table, ok := emotionTables[lang]
	if !ok {
		table = emotionTables[model.LangEnglish]
	}
	for _, p := range table {
		if p.matcher.Match(normalized) {
			return p.emotion
		}
	}
	return model.EmotionNeutral
}
