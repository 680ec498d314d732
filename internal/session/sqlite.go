package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	app_name   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	session_id TEXT NOT NULL,
	state      TEXT NOT NULL,
	version    INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (app_name, user_id)
)`

// sqliteStore persists sessions in a single-file database. It suits
// single-instance deployments that need sessions to survive restarts
// without running a Redis.
type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids busy errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing session schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Load(ctx context.Context, appName, userID string) (*Record, error) {
	rec, err := s.scanRecord(ctx, s.db.QueryRowContext(ctx,
		`SELECT session_id, state, version, created_at, updated_at
		 FROM sessions WHERE app_name = ? AND user_id = ?`,
		appName, userID), appName, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *sqliteStore) Create(ctx context.Context, appName, userID string, state *State) (*Record, error) {
	rec := newRecord(appName, userID, state.Clone(), time.Now().UTC())

	data, err := marshalState(rec.State)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE app_name = ? AND user_id = ?`,
		appName, userID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrAlreadyExists
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (app_name, user_id, session_id, state, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		appName, userID, rec.ID, data, rec.Version,
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *sqliteStore) Replace(ctx context.Context, appName, userID, sessionID string, state *State, version int64) (*Record, error) {
	data, err := marshalState(state)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, version = version + 1, updated_at = ?
		 WHERE app_name = ? AND user_id = ? AND session_id = ? AND version = ?`,
		data, now.Format(time.RFC3339Nano), appName, userID, sessionID, version)
	if err != nil {
		return nil, fmt.Errorf("replacing session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.conflictReason(ctx, appName, userID, sessionID)
	}

	rec, err := s.Load(ctx, appName, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *sqliteStore) Reset(ctx context.Context, appName, userID string, preserve []string) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rec, err := s.scanRecord(ctx, tx.QueryRowContext(ctx,
		`SELECT session_id, state, version, created_at, updated_at
		 FROM sessions WHERE app_name = ? AND user_id = ?`,
		appName, userID), appName, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	fresh, err := resetState(rec.State, preserve)
	if err != nil {
		return nil, err
	}

	data, err := marshalState(fresh)
	if err != nil {
		return nil, err
	}

	rec.State = fresh
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET state = ?, version = ?, updated_at = ?
		 WHERE app_name = ? AND user_id = ?`,
		data, rec.Version, rec.UpdatedAt.Format(time.RFC3339Nano), appName, userID)
	if err != nil {
		return nil, fmt.Errorf("resetting session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *sqliteStore) Delete(ctx context.Context, appName, userID, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE app_name = ? AND user_id = ? AND session_id = ?`,
		appName, userID, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// conflictReason tells a stale version apart from a missing or superseded
// session after an UPDATE matched no row.
func (s *sqliteStore) conflictReason(ctx context.Context, appName, userID, sessionID string) error {
	var storedID string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM sessions WHERE app_name = ? AND user_id = ?`,
		appName, userID).Scan(&storedID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if storedID != sessionID {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (s *sqliteStore) scanRecord(_ context.Context, row *sql.Row, appName, userID string) (*Record, error) {
	var (
		rec       Record
		data      string
		createdAt string
		updatedAt string
	)

	err := row.Scan(&rec.ID, &data, &rec.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.AppName = appName
	rec.UserID = userID

	rec.State, err = unmarshalState(data)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing session created_at: %w", err)
	}
	rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing session updated_at: %w", err)
	}

	return &rec, nil
}

func marshalState(state *State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshaling session state: %w", err)
	}
	return string(data), nil
}

func unmarshalState(data string) (*State, error) {
	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("unmarshaling session state: %w", err)
	}
	return &state, nil
}
