// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/artfulguesser/backend/internal/models"
)

const (
	sessionKeyPrefix     = "artful:session:"
	sessionChannelPrefix = "artful:session:updates:"

	// maxTxRetries bounds optimistic WATCH retries when two writers contend
	// for the same document. This is store-internal contention handling, not
	// an operation retry; a genuine transport failure still propagates.
	maxTxRetries = 5
)

// RedisStore persists each session as one JSON document under a Redis key and
// fans snapshots out over pub/sub. Partial updates run inside a WATCH/MULTI
// transaction so each Patch lands atomically even with multiple service nodes
// in front of the same Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis at addr and pings it once.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func sessionKey(id string) string     { return sessionKeyPrefix + id }
func sessionChannel(id string) string { return sessionChannelPrefix + id }

func (r *RedisStore) Create(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(s.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *RedisStore) Read(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) Update(ctx context.Context, id string, patch Patch) error {
	return r.mutate(ctx, id, func(s *models.Session) {
		patch.apply(s)
	})
}

func (r *RedisStore) AppendGuess(ctx context.Context, id string, entry models.GuessEntry) error {
	return r.mutate(ctx, id, func(s *models.Session) {
		s.Guesses = append(s.Guesses, entry)
	})
}

// mutate applies fn to the stored document inside a WATCH transaction and
// publishes the resulting snapshot.
func (r *RedisStore) mutate(ctx context.Context, id string, fn func(*models.Session)) error {
	key := sessionKey(id)
	var snap *models.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var s models.Session
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		fn(&s)
		out, err := json.Marshal(&s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			snap = &s
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err == ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update session %s: %w", id, err)
		}
		r.publish(ctx, id, snap)
		return nil
	}
	return fmt.Errorf("update session %s: transaction contention after %d attempts", id, maxTxRetries)
}

func (r *RedisStore) publish(ctx context.Context, id string, s *models.Session) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Warnf("session %s: marshal snapshot for publish: %v", id, err)
		return
	}
	if err := r.rdb.Publish(ctx, sessionChannel(id), data).Err(); err != nil {
		log.Warnf("session %s: publish snapshot: %v", id, err)
	}
}

func (r *RedisStore) Subscribe(ctx context.Context, id string, fn func(*models.Session)) (UnsubscribeFunc, error) {
	if _, err := r.Read(ctx, id); err != nil {
		return nil, err
	}
	pubsub := r.rdb.Subscribe(ctx, sessionChannel(id))

	go func() {
		for msg := range pubsub.Channel() {
			var s models.Session
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				log.Warnf("session %s: decode published snapshot: %v", id, err)
				continue
			}
			fn(&s)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				log.Warnf("session %s: close subscription: %v", id, err)
			}
		})
	}, nil
}
