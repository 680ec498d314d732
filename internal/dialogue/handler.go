package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/logger"
	"github.com/topmx/top-assistant/internal/session"
	"go.uber.org/zap"
)

// Target names a dialogue state. The vocabulary is fixed; a transfer to
// anything outside it is a configuration error, never a silent no-op.
type Target string

const (
	// TargetGreeting is answered directly by the router and has no
	// registered handler.
	TargetGreeting    Target = "greeting-intercept"
	TargetDiscovery   Target = "job-discovery"
	TargetJobInfo     Target = "job-info"
	TargetContact     Target = "contact-collection"
	TargetApplication Target = "application"
	TargetFAQ         Target = "faq"
	TargetFollowUp    Target = "follow-up"
)

func (t Target) Valid() bool {
	switch t {
	case TargetGreeting, TargetDiscovery, TargetJobInfo, TargetContact,
		TargetApplication, TargetFAQ, TargetFollowUp:
		return true
	}
	return false
}

// ErrUnknownTarget reports a transfer outside the declared vocabulary. The
// turn is aborted and operations alerted; the session is not persisted.
var ErrUnknownTarget = errors.New("unknown handler target")

// maxTransfers bounds handler-to-handler hops within one turn. The longest
// legitimate chain is contact-collection completing into application.
const maxTransfers = 3

// Turn is one inbound message together with the loaded state and the
// classifier verdict. Handlers mutate State; the engine persists it after
// the turn succeeds.
type Turn struct {
	UserID         string
	State          *session.State
	Message        string
	Classification *ai.Classification
	Now            time.Time
}

// logFields identifies the turn in handler logs.
func (t *Turn) logFields() []zap.Field {
	return logger.TurnFields(t.UserID, string(t.State.Channel))
}

// Result is a handler's outcome: a reply for the user and, optionally, a
// transfer back through the dispatch loop.
type Result struct {
	Reply    string
	Transfer Target
}

type Handler interface {
	Target() Target
	Handle(ctx context.Context, turn *Turn) (*Result, error)
}

// JobLookup is the slice of the posting index the handlers consume.
type JobLookup interface {
	GetJobByID(ctx context.Context, id string) (*jobindex.Job, error)
	GetJobByAdID(ctx context.Context, adID string) (*jobindex.Job, error)
	ListAvailable(ctx context.Context, offset, limit int) (*jobindex.Page, error)
}

// Notifier delivers one-way notifications outside the conversation.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Registry dispatches a routed turn to its handler and follows transfers.
type Registry struct {
	handlers map[Target]Handler
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger, handlers ...Handler) *Registry {
	m := make(map[Target]Handler, len(handlers))
	for _, h := range handlers {
		m[h.Target()] = h
	}
	return &Registry{handlers: m, logger: logger}
}

// Dispatch runs the handler for target and any handlers it transfers to,
// concatenating their replies. Every hop is validated against the declared
// vocabulary first.
func (r *Registry) Dispatch(ctx context.Context, target Target, turn *Turn) (string, error) {
	var parts []string

	for hop := 0; ; hop++ {
		if !target.Valid() {
			return "", fmt.Errorf("%w: %q", ErrUnknownTarget, target)
		}

		handler, ok := r.handlers[target]
		if !ok {
			return "", fmt.Errorf("%w: no handler registered for %q", ErrUnknownTarget, target)
		}

		result, err := handler.Handle(ctx, turn)
		if err != nil {
			return "", fmt.Errorf("handler %s: %w", target, err)
		}

		if result.Reply != "" {
			parts = append(parts, result.Reply)
		}

		if result.Transfer == "" {
			return strings.Join(parts, "\n\n"), nil
		}

		if hop == maxTransfers {
			return "", fmt.Errorf("%w: transfer chain exceeded %d hops at %q", ErrUnknownTarget, maxTransfers, result.Transfer)
		}

		r.logger.Debug("handler transfer",
			zap.String("from", string(target)),
			zap.String("to", string(result.Transfer)),
		)
		target = result.Transfer
	}
}
