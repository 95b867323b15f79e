package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/pkg/config"
)

// ErrNoSession is returned when the session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

const keyPrefix = "session:"

// record is the server-side session state. The remember flag travels with
// the identity so TTL refreshes keep the lifetime the login chose.
type record struct {
	User     *models.SessionUser `json:"user"`
	Remember bool                `json:"remember"`
}

// Store owns all session state. Clients only ever hold the opaque id; the
// identity lives in Redis for the lifetime of the session and nowhere else.
type Store struct {
	client *redis.Client
	cfg    config.SessionConfig
}

// NewStore constructs a Redis-backed session store.
func NewStore(client *redis.Client, cfg config.SessionConfig) *Store {
	return &Store{client: client, cfg: cfg}
}

// Create persists a new session and returns its opaque identifier.
func (s *Store) Create(ctx context.Context, user *models.SessionUser, remember bool) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(record{User: user, Remember: remember})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl(remember)).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// Get resolves a session id into its user. Unknown or expired ids return
// ErrNoSession.
func (s *Store) Get(ctx context.Context, id string) (*models.SessionUser, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return rec.User, nil
}

// Refresh slides the session expiry on activity, preserving the lifetime
// chosen at login.
func (s *Store) Refresh(ctx context.Context, id string) error {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoSession
		}
		return fmt.Errorf("load session: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return s.client.Expire(ctx, keyPrefix+id, s.ttl(rec.Remember)).Err()
}

// Destroy removes a session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// TTL returns the configured lifetime for the given remember choice.
func (s *Store) TTL(remember bool) int {
	return int(s.ttl(remember).Seconds())
}

func (s *Store) ttl(remember bool) time.Duration {
	if remember {
		return s.cfg.RememberTTL
	}
	return s.cfg.TTL
}
