// Package assistant runs conversation turns: it owns the session lifecycle
// around a single inbound event and connects the webhook transport to the
// dialogue layer. One event in, at most one reply out.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/dialogue"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/logger"
	"github.com/topmx/top-assistant/internal/session"
)

// msgTurnFailure is sent when a turn cannot be completed. The session is not
// persisted in that case, so the user can simply try again.
const msgTurnFailure = "Lo siento, ocurrió un error al procesar tu mensaje. Por favor, intenta de nuevo más tarde."

// referralFallbackTitle labels a WhatsApp ad that carries neither headline
// nor body text.
const referralFallbackTitle = "Puesto de Anuncio de WhatsApp"

// Referral is the ad attribution attached to an inbound message. WhatsApp
// ads carry the posting id directly in AdID; Messenger ads carry an ad or
// ref identifier that resolves through the posting index.
type Referral struct {
	AdID     string
	Ref      string
	Headline string
	Body     string
}

// Event is one normalized inbound platform event. Text may be empty: a pure
// referral event updates the job context without producing a reply.
type Event struct {
	Channel  session.Channel
	SenderID string
	Text     string
	Referral *Referral
}

// ReplySender delivers the turn's reply over the event's channel.
type ReplySender interface {
	Send(ctx context.Context, channel session.Channel, recipientID, text string) error
}

// Engine processes events end to end: load or create the session, apply any
// referral, route, dispatch, persist, reply. Turns for the same user are
// serialized through per-user locks; state is persisted only when the whole
// turn succeeds.
type Engine struct {
	appName  string
	store    session.Store
	locks    *session.UserLocks
	jobs     dialogue.JobLookup
	router   *dialogue.Router
	registry *dialogue.Registry
	sender   ReplySender
	alerts   dialogue.Notifier
	logger   *zap.Logger

	// now is the turn clock, replaced in tests.
	now func() time.Time
}

func New(appName string, store session.Store, jobs dialogue.JobLookup, router *dialogue.Router,
	registry *dialogue.Registry, sender ReplySender, alerts dialogue.Notifier, log *zap.Logger) *Engine {
	return &Engine{
		appName:  appName,
		store:    store,
		locks:    session.NewUserLocks(),
		jobs:     jobs,
		router:   router,
		registry: registry,
		sender:   sender,
		alerts:   alerts,
		logger:   log,
		now:      time.Now,
	}
}

// HandleEvent runs one turn. A version conflict means another write slipped
// in despite the user lock (a second instance, or an admin reset); a
// mid-turn not-found means the session vanished between load and replace
// (TTL expiry, an admin delete). Both are retried once against a fresh
// load, which recreates a vanished session from the initial template. Any
// other failure sends the fixed apology and alerts operations.
func (e *Engine) HandleEvent(ctx context.Context, event Event) error {
	if !event.Channel.Valid() {
		return fmt.Errorf("unsupported channel %q", event.Channel)
	}

	userID := session.NormalizeUserID(event.SenderID)
	fields := logger.TurnFields(userID, string(event.Channel))

	unlock := e.locks.Lock(userID)
	defer unlock()

	reply, err := e.runTurn(ctx, userID, event)
	switch {
	case errors.Is(err, session.ErrVersionConflict):
		e.logger.Warn("concurrent session write, retrying turn", fields...)
		reply, err = e.runTurn(ctx, userID, event)
	case errors.Is(err, session.ErrNotFound):
		e.logger.Warn("session lost mid-turn, rebuilding", fields...)
		reply, err = e.runTurn(ctx, userID, event)
	}
	if err != nil {
		e.logger.Error("turn failed", append(fields, zap.Error(err))...)
		e.alert(ctx, fmt.Sprintf("Fallo al procesar un mensaje.\nUsuario: %s\nCanal: %s\nError: %v", userID, event.Channel, err))
		if sendErr := e.sender.Send(ctx, event.Channel, event.SenderID, msgTurnFailure); sendErr != nil {
			e.logger.Error("sending failure reply", append(fields, zap.Error(sendErr))...)
		}
		return err
	}

	if reply == "" {
		return nil
	}

	if err := e.sender.Send(ctx, event.Channel, event.SenderID, reply); err != nil {
		e.logger.Error("sending reply", append(fields, zap.Error(err))...)
		e.alert(ctx, fmt.Sprintf("No se pudo entregar una respuesta.\nUsuario: %s\nCanal: %s\nError: %v", userID, event.Channel, err))
		return fmt.Errorf("sending reply: %w", err)
	}

	return nil
}

// runTurn executes the turn against loaded state and returns the reply to
// deliver. State reaches the store only through the final Replace, so a
// failed turn leaves the stored session exactly as it was.
func (e *Engine) runTurn(ctx context.Context, userID string, event Event) (string, error) {
	now := e.now()
	fields := logger.TurnFields(userID, string(event.Channel))

	record, err := e.store.Load(ctx, e.appName, userID)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}

	if record == nil {
		record, err = e.store.Create(ctx, e.appName, userID, session.NewState(event.Channel, userID))
		if err != nil {
			return "", fmt.Errorf("creating session: %w", err)
		}
		e.logger.Info("session created", append(fields, zap.String("session_id", record.ID))...)
	}

	if event.Referral != nil {
		record, err = e.applyReferral(ctx, userID, record, event)
		if err != nil {
			return "", err
		}
	}

	text := strings.TrimSpace(event.Text)
	if text == "" {
		if event.Referral != nil {
			if _, err := e.store.Replace(ctx, e.appName, userID, record.ID, record.State, record.Version); err != nil {
				return "", fmt.Errorf("persisting referral context: %w", err)
			}
		}
		return "", nil
	}

	decision, err := e.router.Route(ctx, record.State, text, now)
	if err != nil {
		return "", fmt.Errorf("routing turn: %w", err)
	}

	reply := decision.Reply
	if dispatchable(decision.Target) {
		turn := &dialogue.Turn{
			UserID:         userID,
			State:          record.State,
			Message:        text,
			Classification: decision.Classification,
			Now:            now,
		}

		handled, err := e.registry.Dispatch(ctx, decision.Target, turn)
		if err != nil {
			if errors.Is(err, dialogue.ErrUnknownTarget) {
				e.alert(ctx, fmt.Sprintf("Destino de enrutamiento desconocido.\nUsuario: %s\nCanal: %s\nError: %v", userID, event.Channel, err))
			}
			return "", fmt.Errorf("dispatching turn: %w", err)
		}

		if handled != "" {
			if reply != "" {
				reply = reply + "\n\n" + handled
			} else {
				reply = handled
			}
		}
	}

	if _, err := e.store.Replace(ctx, e.appName, userID, record.ID, record.State, record.Version); err != nil {
		return "", fmt.Errorf("persisting session: %w", err)
	}

	return reply, nil
}

// dispatchable reports whether the decision needs a handler. Greeting
// intercepts and clarification fallbacks are answered by the router's reply
// alone.
func dispatchable(target dialogue.Target) bool {
	return target != "" && target != dialogue.TargetGreeting
}

// applyReferral folds the event's ad attribution into the session. A
// referral for a different job than the stored one rebuilds the session
// from the initial template, keeping only identity and contact fields; a
// mixed job context would mislead every handler downstream. The caller
// persists the returned record's state.
func (e *Engine) applyReferral(ctx context.Context, userID string, record *session.Record, event Event) (*session.Record, error) {
	jobID, title, adRef, err := e.resolveReferral(ctx, event)
	if err != nil {
		return nil, err
	}
	if jobID == "" {
		return record, nil
	}

	fields := append(logger.TurnFields(userID, string(event.Channel)),
		zap.String("job_id", jobID),
		zap.String("ad", adRef),
	)

	switch {
	case record.State.CurrentJobID == jobID:
		e.logger.Debug("referral for current job, context unchanged", fields...)
		return record, nil

	case record.State.CurrentJobID != "":
		record, err = e.store.Reset(ctx, e.appName, userID, session.DefaultPreservedFields)
		if err != nil {
			return nil, fmt.Errorf("resetting session for referral: %w", err)
		}
		e.logger.Info("job context switched by referral, session rebuilt", fields...)
	default:
		e.logger.Info("job context set from referral", fields...)
	}

	record.State.SetJobContext(jobID, title, adRef)
	return record, nil
}

// resolveReferral maps the platform referral to a posting. WhatsApp ads
// embed the posting id as the referral source id; Messenger ads carry an
// identifier the posting index resolves. An unresolvable referral is
// dropped with a warning, the message itself still gets a normal turn.
func (e *Engine) resolveReferral(ctx context.Context, event Event) (jobID, title, adRef string, err error) {
	ref := event.Referral

	switch event.Channel {
	case session.ChannelWhatsApp:
		if ref.AdID == "" {
			return "", "", "", nil
		}
		title = ref.Headline
		if title == "" {
			title = ref.Body
		}
		if title == "" {
			title = referralFallbackTitle
		}
		return ref.AdID, title, ref.AdID, nil

	case session.ChannelMessenger:
		adRef = ref.AdID
		if adRef == "" {
			adRef = ref.Ref
		}
		if adRef == "" {
			return "", "", "", nil
		}

		job, err := e.jobs.GetJobByAdID(ctx, adRef)
		if err != nil {
			if errors.Is(err, jobindex.ErrNotFound) {
				e.logger.Warn("referral ad has no posting", zap.String("ad", adRef))
				return "", "", "", nil
			}
			return "", "", "", fmt.Errorf("resolving referral ad %s: %w", adRef, err)
		}
		return job.ID, job.Title, adRef, nil
	}

	return "", "", "", nil
}

func (e *Engine) alert(ctx context.Context, message string) {
	if e.alerts == nil {
		return
	}
	if err := e.alerts.Notify(ctx, message); err != nil {
		e.logger.Warn("delivering operations alert", zap.Error(err))
	}
}
