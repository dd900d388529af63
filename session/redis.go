package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in Redis.
const KeyPrefix = "dexter:telephony:session:"

const maxTxRetries = 5

// RedisStore keeps sessions in Redis with a sliding expiry. It is volatile storage:
// an abandoned call simply expires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore returns a store backed by client. A zero ttl disables expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func key(id string) string { return KeyPrefix + id }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, g getter, id string) (*Session, error) {
	data, err := g.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session %s: %w", id, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) Create(ctx context.Context, id string, first ...Turn) (*Session, error) {
	if err := checkOrder(nil, first); err != nil {
		return nil, err
	}
	now := r.now()
	s := &Session{ID: id, Turns: append([]Turn(nil), first...), CreatedAt: now, UpdatedAt: now}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("could not encode session %s: %w", id, err)
	}
	ok, err := r.client.SetNX(ctx, key(id), data, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("could not create session %s: %w", id, err)
	}
	if !ok {
		return nil, ErrExists
	}
	return s, nil
}

// Append adds turns inside a WATCH transaction so concurrent appends cannot interleave.
func (r *RedisStore) Append(ctx context.Context, id string, turns ...Turn) error {
	txf := func(tx *redis.Tx) error {
		s, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkOrder(s.Turns, turns); err != nil {
			return err
		}
		s.Turns = append(s.Turns, turns...)
		s.UpdatedAt = r.now()
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("could not encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("could not append to session %s: too much contention", id)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	return load(ctx, r.client, id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("could not delete session %s: %w", id, err)
	}
	return nil
}

// IDs lists the IDs of every stored session.
func (r *RedisStore) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), KeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("could not scan sessions: %w", err)
	}
	return ids, nil
}

func (r *RedisStore) Count(ctx context.Context) (int, error) {
	ids, err := r.IDs(ctx)
	return len(ids), err
}
