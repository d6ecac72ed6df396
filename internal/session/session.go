// Package session provides Valkey-backed refresh-token sessions for the
// JSON API. Access tokens are short-lived JWTs; the opaque refresh token
// stored here is what keeps a login alive and what logout revokes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a refresh token lives in Valkey before
	// automatic expiry.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces refresh-token keys in Valkey.
	keyPrefix = "refresh:"

	// idLength is the byte length of the random token (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload stored in Valkey: the authenticated
// user's identity as of login time.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store manages refresh-token lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// Create generates a new refresh token and stores the session payload
// under it. Returns the opaque token handed to the client.
func (s *Store) Create(ctx context.Context, data *Data) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	return token, nil
}

// Get retrieves session data for a refresh token. Returns nil if the token
// is unknown or expired.
func (s *Store) Get(ctx context.Context, token string) (*Data, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Rotate revokes the old refresh token and issues a fresh one for the same
// session. Returns nil data when the old token was not valid.
func (s *Store) Rotate(ctx context.Context, token string) (string, *Data, error) {
	data, err := s.Get(ctx, token)
	if err != nil {
		return "", nil, err
	}
	if data == nil {
		return "", nil, nil
	}

	if err := s.Revoke(ctx, token); err != nil {
		return "", nil, err
	}

	fresh, err := s.Create(ctx, data)
	if err != nil {
		return "", nil, err
	}
	return fresh, data, nil
}

// Revoke removes a refresh token. Revoking an unknown token is a no-op.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

// generateToken returns a cryptographically random hex token.
func generateToken() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
