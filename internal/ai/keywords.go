package ai

import (
	"context"
	"strings"
)

// KeywordClassifier matches messages against fixed Spanish vocabularies. It
// needs no network and no key, and doubles as the fallback when a model
// backend is down. Matching ignores case, accents and punctuation.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

const keywordConfidence = 0.9

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// Phrases match as substrings of the folded message; single words match
// whole tokens only, so "hola" does not fire inside "holanda".
var (
	greetingWords   = []string{"hola", "hey", "hello", "hi", "saludos"}
	greetingPhrases = []string{"buenos dias", "buenas tardes", "buenas noches", "buen dia", "que tal"}

	jobQueryWords = []string{
		"vacante", "vacantes", "trabajo", "trabajos", "empleo", "empleos",
		"puesto", "puestos", "chamba", "sueldo", "salario", "empresa",
		"horario", "horarios", "ubicacion", "requisitos", "funciones",
		"actividades", "busco", "buscar",
	}
	jobQueryPhrases = []string{"que hay", "donde esta", "donde queda", "de que trata"}

	interviewPhrases = []string{
		"mi entrevista", "la entrevista", "reagendar", "cambiar la fecha",
		"confirmar mi cita", "mi cita",
	}

	faqPhrases = []string{
		"como funciona", "quienes son", "quien es top", "que es top",
		"es gratis", "tiene costo", "algun costo", "necesito cv",
		"necesito curriculum", "piden cv", "cuanto tarda", "cuanto tiempo",
		"como me postulo", "como aplico", "es confiable", "es seguro",
	}

	applyWords   = []string{"postularme", "postular", "postulo", "aplicar", "aplico"}
	applyPhrases = []string{
		"quiero postularme", "me quiero postular", "quiero aplicar",
		"quiero el trabajo", "quiero la vacante", "me interesa la vacante",
		"me interesa el puesto", "si me interesa", "acepto",
	}
)

func (c *KeywordClassifier) Classify(_ context.Context, message string) (*Classification, error) {
	folded := Fold(message)
	tokens := tokenSet(folded)

	intent := IntentUnknown
	switch {
	case isNumeric(strings.TrimSpace(message)):
		// A bare number is a posting id or a listing selection.
		intent = IntentJobQuery
	case matchAny(folded, tokens, interviewPhrases, nil):
		intent = IntentInterviewDate
	case matchAny(folded, tokens, applyPhrases, applyWords):
		intent = IntentApply
	case matchAny(folded, tokens, faqPhrases, nil):
		intent = IntentFAQ
	case matchAny(folded, tokens, jobQueryPhrases, jobQueryWords):
		intent = IntentJobQuery
	case matchAny(folded, tokens, greetingPhrases, greetingWords):
		intent = IntentGreeting
	}

	confidence := keywordConfidence
	if intent == IntentUnknown {
		confidence = 0
	}

	return &Classification{Intent: intent, Confidence: confidence}, nil
}

// Fold lowercases a message, strips accents and replaces punctuation with
// spaces, the canonical form every keyword match runs against.
func Fold(message string) string {
	folded := accentFolder.Replace(strings.ToLower(message))

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == 'ñ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(folded string) map[string]bool {
	set := map[string]bool{}
	for _, token := range strings.Fields(folded) {
		set[token] = true
	}
	return set
}

func matchAny(folded string, tokens map[string]bool, phrases, words []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	for _, word := range words {
		if tokens[word] {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
