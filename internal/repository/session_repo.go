package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

// ErrSessionNotFound indicates the session expired or was discarded.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists screen-session state. Each session is owned by the
// screen that created it and is discarded on navigation or TTL expiry.
type SessionStore interface {
	SaveMarkSession(ctx context.Context, session *models.MarkSession) error
	GetMarkSession(ctx context.Context, id string) (models.MarkSession, error)
	DeleteMarkSession(ctx context.Context, id string) error
	SaveFeeSession(ctx context.Context, session *models.FeeSession) error
	GetFeeSession(ctx context.Context, id string) (models.FeeSession, error)
	DeleteFeeSession(ctx context.Context, id string) error
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds a Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisSessionStore{client: client, ttl: ttl}
}

func markSessionKey(id string) string { return fmt.Sprintf("session:marks:%s", id) }
func feeSessionKey(id string) string  { return fmt.Sprintf("session:fees:%s", id) }

func (s *redisSessionStore) save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *redisSessionStore) get(ctx context.Context, key string, out interface{}) error {
	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(payload), out)
}

func (s *redisSessionStore) SaveMarkSession(ctx context.Context, session *models.MarkSession) error {
	return s.save(ctx, markSessionKey(session.ID), session)
}

func (s *redisSessionStore) GetMarkSession(ctx context.Context, id string) (models.MarkSession, error) {
	var session models.MarkSession
	if err := s.get(ctx, markSessionKey(id), &session); err != nil {
		return models.MarkSession{}, err
	}
	return session, nil
}

func (s *redisSessionStore) DeleteMarkSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, markSessionKey(id)).Err()
}

func (s *redisSessionStore) SaveFeeSession(ctx context.Context, session *models.FeeSession) error {
	return s.save(ctx, feeSessionKey(session.ID), session)
}

func (s *redisSessionStore) GetFeeSession(ctx context.Context, id string) (models.FeeSession, error) {
	var session models.FeeSession
	if err := s.get(ctx, feeSessionKey(id), &session); err != nil {
		return models.FeeSession{}, err
	}
	return session, nil
}

func (s *redisSessionStore) DeleteFeeSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, feeSessionKey(id)).Err()
}
