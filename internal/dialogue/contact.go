package dialogue

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// minPhoneDigits matches Mexican local numbers; ids arriving with a country
// code run up to 13 digits.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 13
)

// ContactHandler fills in the contact fields one question per turn. The
// pending question lives in the interaction trail, so the flow survives a
// process restart mid-collection.
type ContactHandler struct {
	log *zap.Logger
}

func NewContactHandler(log *zap.Logger) *ContactHandler {
	return &ContactHandler{log: log}
}

func (h *ContactHandler) Target() Target { return TargetContact }

func (h *ContactHandler) Handle(ctx context.Context, turn *Turn) (*Result, error) {
	state := turn.State
	answer := strings.TrimSpace(turn.Message)

	if last := state.LastInteraction(); last != nil {
		switch last.Action {
		case actionAskedName:
			if !looksLikeName(answer) {
				return &Result{Reply: msgBadName}, nil
			}
			state.UserName = answer
		case actionAskedLastName:
			if !looksLikeName(answer) {
				return &Result{Reply: msgBadName}, nil
			}
			state.LastName = answer
		case actionAskedPhone:
			phone, ok := normalizePhone(answer)
			if !ok {
				return &Result{Reply: msgBadPhone}, nil
			}
			state.ContactPhoneNumber = phone
		}
	}

	return h.askNext(turn)
}

// askNext asks for the first still-missing field, or hands the completed
// contact card to the application handler.
func (h *ContactHandler) askNext(turn *Turn) (*Result, error) {
	state := turn.State

	report := EvaluateContact(state)
	if report.AllComplete {
		h.log.Info("contact data complete", turn.logFields()...)
		return &Result{
			Reply:    fmt.Sprintf(msgContactDone, state.UserName),
			Transfer: TargetApplication,
		}, nil
	}

	switch report.MissingFields[0] {
	case MissingName:
		state.AppendInteraction(actionAskedName, turn.Now, nil)
		return &Result{Reply: msgAskName}, nil
	case MissingLastName:
		state.AppendInteraction(actionAskedLastName, turn.Now, nil)
		return &Result{Reply: msgAskLastName}, nil
	default:
		state.AppendInteraction(actionAskedPhone, turn.Now, nil)
		return &Result{Reply: msgAskPhone}, nil
	}
}

// looksLikeName accepts letters, spaces and in-word punctuation such as
// "Ma. José" or "O'Brien". Digits disqualify the answer outright.
func looksLikeName(s string) bool {
	if len([]rune(s)) < 2 {
		return false
	}

	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			return false
		case r == ' ' || r == '.' || r == '\'' || r == '-':
		default:
			return false
		}
	}

	return letters >= 2
}

// normalizePhone strips the usual phone punctuation and keeps the digits.
func normalizePhone(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return "", false
		}
	}

	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}

	return digits, true
}
