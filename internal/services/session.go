package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionTTL is 7 days
	DefaultSessionTTL = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"

	maxTokenLength = 128
)

// SessionManager issues and resolves opaque session tokens. Resolve never
// fails: anything it cannot map to a live session is anonymous.
type SessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (uuid.UUID, bool)
	End(ctx context.Context, token string) error
	Close() error
}

// newSessionToken returns 32 random bytes, base64url encoded.
func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// TokenFingerprint is a short non-reversible tag for a token, safe to log.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

// RedisSessionManager keeps sessions in Redis. Each user has at most one
// live session; starting a new one drops the previous token.
type RedisSessionManager struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

var _ SessionManager = (*RedisSessionManager)(nil)

// NewRedisSessionManager uses DefaultSessionTTL when ttl <= 0.
func NewRedisSessionManager(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisSessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisSessionManager{client: client, ttl: ttl, log: log}
}

// startScript swaps the user's session in one step: the previous token named
// by user_session:<id> is deleted and the new token takes its place.
//
// KEYS[1] user_session:<id>, KEYS[2] session:<new token>
// ARGV[1] new token, ARGV[2] user id, ARGV[3] ttl in ms, ARGV[4] session key prefix
var startScript = redis.NewScript(`
local old = redis.call('GET', KEYS[1])
if old then
	redis.call('DEL', ARGV[4] .. old)
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// endScript deletes a session and, when it is still the user's current one,
// the user mapping.
//
// KEYS[1] session:<token>
// ARGV[1] token, ARGV[2] user session key prefix
var endScript = redis.NewScript(`
local uid = redis.call('GET', KEYS[1])
if uid then
	local userKey = ARGV[2] .. uid
	if redis.call('GET', userKey) == ARGV[1] then
		redis.call('DEL', userKey)
	end
end
return redis.call('DEL', KEYS[1])
`)

// Start creates a session for userID, invalidating any session the user
// already had so the TTL counts from this login.
func (m *RedisSessionManager) Start(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	keys := []string{UserSessionKeyPrefix + userID.String(), SessionKeyPrefix + token}
	err = startScript.Run(ctx, m.client, keys, token, userID.String(), m.ttl.Milliseconds(), SessionKeyPrefix).Err()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve maps a token to its user.
func (m *RedisSessionManager) Resolve(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" || len(token) > maxTokenLength {
		return uuid.Nil, false
	}

	val, err := m.client.Get(ctx, SessionKeyPrefix+token).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.log.Warn(ctx, "session lookup failed", "session", TokenFingerprint(token), "error", err)
		}
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		m.log.Warn(ctx, "session holds malformed user id", "session", TokenFingerprint(token))
		return uuid.Nil, false
	}
	return userID, true
}

// End removes the session. Unknown tokens are not an error.
func (m *RedisSessionManager) End(ctx context.Context, token string) error {
	if token == "" || len(token) > maxTokenLength {
		return nil
	}
	err := endScript.Run(ctx, m.client, []string{SessionKeyPrefix + token}, token, UserSessionKeyPrefix).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (m *RedisSessionManager) Close() error {
	return nil
}
