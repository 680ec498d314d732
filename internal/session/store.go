package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is a stored session: identity, state and the version counter used
// for optimistic concurrency. Version starts at 1 and increments on every
// successful write.
type Record struct {
	ID        string    `json:"id"`
	AppName   string    `json:"app_name"`
	UserID    string    `json:"user_id"`
	State     *State    `json:"state"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists one session per (app, user) pair. Implementations must apply
// Replace and Reset atomically: a reader observes either the previous record
// or the new one, never a partial write.
//
// User ids are store keys as given; callers normalize them first (see
// NormalizeUserID).
type Store interface {
	// Load returns the live session for the pair, or (nil, nil) when the
	// pair has none.
	Load(ctx context.Context, appName, userID string) (*Record, error)

	// Create starts a session from the given initial state. It fails with
	// ErrAlreadyExists when the pair already has one.
	Create(ctx context.Context, appName, userID string, state *State) (*Record, error)

	// Replace writes a full state snapshot over the session identified by
	// sessionID, but only if the stored version still equals version.
	// A mismatch returns ErrVersionConflict; a missing or superseded
	// session returns ErrNotFound.
	Replace(ctx context.Context, appName, userID, sessionID string, state *State, version int64) (*Record, error)

	// Reset rebuilds the session from the initial-state template, copying
	// over only the named state fields. The session id survives the reset
	// so there is no window where the pair has no session.
	Reset(ctx context.Context, appName, userID string, preserve []string) (*Record, error)

	// Delete removes the session identified by sessionID.
	Delete(ctx context.Context, appName, userID, sessionID string) error

	Close() error
}

// DefaultPreservedFields lists the state fields a reset carries over: the
// user's identity and contact details. Job context, interview context and
// both trails start fresh.
var DefaultPreservedFields = []string{
	"user_name",
	"last_name",
	"email",
	"contact_phone_number",
	"phone_number",
	"channel",
}

func newRecord(appName, userID string, state *State, now time.Time) *Record {
	return &Record{
		ID:        uuid.NewString(),
		AppName:   appName,
		UserID:    userID,
		State:     state,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.State = r.State.Clone()
	return &out
}

// resetState builds a fresh initial state and copies the listed fields over
// from old, addressed by their JSON names. The channel is always carried:
// it is immutable for the life of the user.
func resetState(old *State, preserve []string) (*State, error) {
	oldRaw, err := json.Marshal(old)
	if err != nil {
		return nil, err
	}

	var oldFields map[string]json.RawMessage
	if err := json.Unmarshal(oldRaw, &oldFields); err != nil {
		return nil, err
	}

	freshRaw, err := json.Marshal(NewState(old.Channel, ""))
	if err != nil {
		return nil, err
	}

	var freshFields map[string]json.RawMessage
	if err := json.Unmarshal(freshRaw, &freshFields); err != nil {
		return nil, err
	}

	for _, name := range append([]string{"channel"}, preserve...) {
		if v, ok := oldFields[name]; ok {
			freshFields[name] = v
		}
	}

	merged, err := json.Marshal(freshFields)
	if err != nil {
		return nil, err
	}

	var out State
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
