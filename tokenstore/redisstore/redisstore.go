// Package redisstore keeps console session tokens in Redis, one key per
// browser session, so tokens survive a console restart and can be shared by
// several console replicas.
package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "materials-admin:token:"

// Connect opens a client and verifies it with a PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, errors.Wrapf(err, "[redisstore.Connect] ping %s", addr)
	}
	return client, nil
}

var _ tokenstore.Store = (*Store)(nil)

// Store is a token slot bound to a single Redis key.
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New binds a store to sessionID. A zero ttl keeps the key until Clear.
func New(client *redis.Client, sessionID string, ttl time.Duration) *Store {
	return &Store{
		client: client,
		key:    Key(sessionID),
		ttl:    ttl,
	}
}

// Key is the Redis key holding the token for sessionID.
func Key(sessionID string) string {
	return defaultPrefix + sessionID
}

func (s *Store) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", tokenstore.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrap(err, "[redisstore.Get]")
	}
	if val == "" {
		return "", tokenstore.ErrNoToken
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Set]")
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "[redisstore.Clear]")
	}
	return nil
}

// Slots hands out one Store per console session on a shared client.
type Slots struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlots(client *redis.Client, ttl time.Duration) *Slots {
	return &Slots{client: client, ttl: ttl}
}

func (s *Slots) For(sessionID string) tokenstore.Store {
	return New(s.client, sessionID, s.ttl)
}

// Forget deletes the session's key. Failures are ignored, the key expires on
// its own.
func (s *Slots) Forget(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.client.Del(ctx, Key(sessionID)).Err()
}
