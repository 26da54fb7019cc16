package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long an issued state is honored by the callback.
const StateTTL = 10 * time.Minute

const statePrefix = "oauth:state:"

// StateRecord is the short-lived artifact bound to one authorization
// round-trip. The code verifier is only set for PKCE platforms.
type StateRecord struct {
	UserID       int64     `json:"user_id"`
	Platform     string    `json:"platform"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// StateStore keeps issued states in Redis under a TTL. Consume is a GETDEL,
// so a state can be redeemed exactly once even under concurrent callback
// delivery; replays and expired states both come back as ErrInvalidState.
type StateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb, ttl: StateTTL}
}

// Issue generates a 256-bit random state and stores the record under it.
func (s *StateStore) Issue(ctx context.Context, record StateRecord) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)

	record.IssuedAt = time.Now()
	payload, err := json.Marshal(record)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, statePrefix+state, payload, s.ttl).Err(); err != nil {
		slog.Error("failed to store oauth state", "error", err)
		return "", err
	}
	return state, nil
}

// Update rewrites the record under an already issued state, restarting the
// TTL window. Used to attach the PKCE verifier once the authorization URL
// has been built.
func (s *StateStore) Update(ctx context.Context, state string, record StateRecord) error {
	if record.IssuedAt.IsZero() {
		record.IssuedAt = time.Now()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statePrefix+state, payload, s.ttl).Err()
}

// Consume atomically fetches and deletes the record for state.
func (s *StateStore) Consume(ctx context.Context, state string) (*StateRecord, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	payload, err := s.rdb.GetDel(ctx, statePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidState
		}
		slog.Error("failed to consume oauth state", "error", err)
		return nil, err
	}

	var record StateRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, ErrInvalidState
	}
	return &record, nil
}
