package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound is returned when a session id has no live entry in the
// session store.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore looks up sessions issued by the identity provider. The store
// only reads; session creation and expiry belong to the provider's side.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore creates a session store over an existing Redis client
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

// UserID returns the user id bound to a session, or ErrSessionNotFound when
// the session does not exist or has expired.
func (s *SessionStore) UserID(ctx context.Context, sessionID string) (int, error) {
	val, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("malformed session payload: %w", err)
	}

	return userID, nil
}
