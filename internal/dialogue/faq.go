package dialogue

import (
	"context"
	"strings"

	"github.com/topmx/top-assistant/internal/ai"
)

// FAQHandler answers fixed questions about the service itself. It never
// touches state; a candidate can ask process questions mid-flow without
// losing their place.
type FAQHandler struct{}

func NewFAQHandler() *FAQHandler { return &FAQHandler{} }

func (h *FAQHandler) Target() Target { return TargetFAQ }

func (h *FAQHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	return &Result{Reply: faqAnswer(turn.Message)}, nil
}

func faqAnswer(message string) string {
	folded := ai.Fold(message)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(folded, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("gratis", "costo", "cobra", "cobran", "pagar"):
		return msgFAQFree
	case has("cv", "curriculum", "papeles", "documentos"):
		return msgFAQResume
	case has("como me postulo", "como aplico", "como postularme", "como postulo"):
		return msgFAQHowToApply
	case has("cuanto tarda", "cuando me contactan", "cuanto tiempo", "cuando me llaman"):
		return msgFAQTiming
	case has("confiable", "confianza", "seguro", "estafa", "real"):
		return msgFAQTrust
	case has("que es top", "quienes son", "como funciona", "de que se trata"):
		return msgFAQAbout
	}

	return msgFAQDefault
}
