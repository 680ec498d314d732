package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/interview"
	"github.com/topmx/top-assistant/internal/logger"
	"github.com/topmx/top-assistant/internal/session"
	"go.uber.org/zap"
)

// Decision is the router's verdict for one turn: a handler to dispatch, a
// direct reply, or both (the reply is sent ahead of the handler's).
type Decision struct {
	Target         Target
	Reply          string
	Classification *ai.Classification
}

// Router is the single authoritative decision point mapping state and
// message to a handler. Handlers never pick their successors outside the
// transfer vocabulary; every edge into job-discovery and job-info belongs
// to the router alone.
type Router struct {
	classifier ai.Classifier
	logger     *zap.Logger
}

func NewRouter(classifier ai.Classifier, logger *zap.Logger) *Router {
	return &Router{classifier: classifier, logger: logger}
}

// Route decides the turn. It may mutate state: discovery-bound transitions
// clear the interaction trail, and an unparseable stored interview date is
// recovered to unset. The caller persists state after the turn completes.
//
// Cases are evaluated in strict priority order; an inconclusive
// classification falls through to a clarification reply, never a guess.
func (r *Router) Route(ctx context.Context, state *session.State, message string, now time.Time) (*Decision, error) {
	classification, err := r.classifier.Classify(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("classifying message: %w", err)
	}

	r.logger.Debug("message classified",
		zap.String("intent", string(classification.Intent)),
		zap.Float64("confidence", classification.Confidence),
	)

	decision := r.decide(state, message, classification.Intent, now)
	decision.Classification = classification

	r.logger.Info("turn routed",
		zap.String("intent", string(classification.Intent)),
		zap.String("target", string(decision.Target)),
		zap.Bool("direct_reply", decision.Reply != ""),
	)

	return decision, nil
}

func (r *Router) decide(state *session.State, message string, intent ai.Intent, now time.Time) *Decision {
	// Case 1: greetings are intercepted before anything else.
	if intent == ai.IntentGreeting {
		if state.HasJob() {
			return &Decision{Target: TargetGreeting, Reply: fmt.Sprintf(msgGreetingWithJob, state.CurrentJobTitle)}
		}
		state.ClearHistory()
		return &Decision{Target: TargetDiscovery, Reply: msgWelcome}
	}

	// A flow that asked a question in the previous turn keeps the answer,
	// whatever the classifier made of it.
	if target, ok := continuation(state, message); ok {
		return &Decision{Target: target}
	}

	// Case 2: job queries split on job context.
	if intent == ai.IntentJobQuery {
		if state.HasJob() {
			return &Decision{Target: TargetJobInfo}
		}
		state.ClearHistory()
		return &Decision{Target: TargetDiscovery}
	}

	// Case 3: a stored interview date owns ambiguous turns.
	if state.CurrentDayInterview != "" && (intent == ai.IntentInterviewDate || intent == ai.IntentUnknown) {
		status, err := EvaluateInterviewDate(state, now)
		if err != nil && errors.Is(err, interview.ErrInvalidDate) {
			r.logger.Warn("recovering unparseable interview date",
				append(logger.TurnFields("", string(state.Channel)),
					zap.String("stored", state.CurrentDayInterview),
				)...,
			)
			state.CurrentDayInterview = ""
		}

		switch status {
		case InterviewUpcoming:
			return &Decision{Target: TargetFollowUp}
		case InterviewExpired:
			if state.CurrentAdID == "" {
				state.ClearHistory()
				return &Decision{Target: TargetDiscovery}
			}
			return &Decision{Target: TargetJobInfo}
		}
		// Recovered to no date: fall through to the remaining cases.
	}

	// Case 4: process questions go to the FAQ handler, no state change.
	if intent == ai.IntentFAQ {
		return &Decision{Target: TargetFAQ}
	}

	// Case 5: application requests check the trail and contact data first.
	if intent == ai.IntentApply {
		if state.HasJob() && state.HasApplied(state.CurrentJobID) {
			return &Decision{
				Target: TargetFollowUp,
				Reply:  fmt.Sprintf(msgAlreadyApplied, state.CurrentJobTitle),
			}
		}
		if report := EvaluateContact(state); !report.AllComplete {
			return &Decision{Target: TargetContact}
		}
		return &Decision{Target: TargetApplication}
	}

	// Case 6: nothing matched; ask instead of guessing.
	return &Decision{Reply: msgClarify}
}

// continuation returns the handler owning an in-flight flow, keyed by the
// question asked in the previous turn.
func continuation(state *session.State, message string) (Target, bool) {
	last := state.LastInteraction()
	if last == nil {
		return "", false
	}

	switch last.Action {
	case actionAskedName, actionAskedLastName, actionAskedPhone:
		return TargetContact, true
	case actionOfferedDates, actionOfferedTimes:
		return TargetApplication, true
	case actionOfferedListing:
		if isSelection(message) || wantsMore(message) {
			return TargetDiscovery, true
		}
	}

	return "", false
}

func isSelection(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}
	for _, r := range message {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func wantsMore(message string) bool {
	folded := ai.Fold(message)
	return folded == "mas" || strings.Contains(folded, "mas opciones") ||
		strings.Contains(folded, "ver mas") || folded == "otras" || folded == "otros"
}
