package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// redisStore persists sessions as JSON values under session:{app}:{user}.
// Writes go through WATCH so the version check and the SET are one atomic
// step; a key touched between the two surfaces as a version conflict.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisStore(client *redis.Client, ttl time.Duration) *redisStore {
	return &redisStore{client: client, ttl: ttl}
}

func redisKey(appName, userID string) string {
	return redisKeyPrefix + appName + ":" + userID
}

func (r *redisStore) Load(ctx context.Context, appName, userID string) (*Record, error) {
	key := redisKey(appName, userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	rec, err := unmarshalRecord(data)
	if err != nil {
		return nil, err
	}

	// An active conversation keeps its session alive.
	if r.ttl > 0 {
		r.client.Expire(ctx, key, r.ttl)
	}

	return rec, nil
}

func (r *redisStore) Create(ctx context.Context, appName, userID string, state *State) (*Record, error) {
	rec := newRecord(appName, userID, state.Clone(), time.Now().UTC())

	data, err := marshalRecord(rec)
	if err != nil {
		return nil, err
	}

	ok, err := r.client.SetNX(ctx, redisKey(appName, userID), data, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyExists
	}

	return rec, nil
}

func (r *redisStore) Replace(ctx context.Context, appName, userID, sessionID string, state *State, version int64) (*Record, error) {
	key := redisKey(appName, userID)

	var updated *Record
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		stored, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		if stored.ID != sessionID {
			return ErrNotFound
		}
		if stored.Version != version {
			return ErrVersionConflict
		}

		updated = stored
		updated.State = state.Clone()
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()

		payload, err := marshalRecord(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *redisStore) Reset(ctx context.Context, appName, userID string, preserve []string) (*Record, error) {
	key := redisKey(appName, userID)

	var updated *Record
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		stored, err := unmarshalRecord(data)
		if err != nil {
			return err
		}

		fresh, err := resetState(stored.State, preserve)
		if err != nil {
			return err
		}

		updated = stored
		updated.State = fresh
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()

		payload, err := marshalRecord(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *redisStore) Delete(ctx context.Context, appName, userID, sessionID string) error {
	key := redisKey(appName, userID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		stored, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		if stored.ID != sessionID {
			return ErrNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

func marshalRecord(rec *Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling session record: %w", err)
	}
	return data, nil
}

func unmarshalRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling session record: %w", err)
	}
	return &rec, nil
}
