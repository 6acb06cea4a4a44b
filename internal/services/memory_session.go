package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memorySession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemorySessionManager keeps sessions in process memory. It follows the same
// one-session-per-user rule as RedisSessionManager.
type MemorySessionManager struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	byUser   map[uuid.UUID]string
	ttl      time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

var _ SessionManager = (*MemorySessionManager)(nil)

// MemorySessionOptions configures a MemorySessionManager. Zero values pick
// time.Now and no background purge.
type MemorySessionOptions struct {
	TTL           time.Duration
	Now           func() time.Time
	PurgeInterval time.Duration
}

// NewMemorySessionManager starts the purge loop when PurgeInterval > 0.
func NewMemorySessionManager(opts MemorySessionOptions) *MemorySessionManager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &MemorySessionManager{
		sessions: make(map[string]memorySession),
		byUser:   make(map[uuid.UUID]string),
		ttl:      opts.TTL,
		now:      opts.Now,
		stop:     make(chan struct{}),
	}
	if opts.PurgeInterval > 0 {
		go m.purgeLoop(opts.PurgeInterval)
	}
	return m
}

// Start issues a token for userID and drops the user's previous one.
func (m *MemorySessionManager) Start(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byUser[userID]; ok {
		delete(m.sessions, old)
	}
	m.sessions[token] = memorySession{userID: userID, expiresAt: m.now().Add(m.ttl)}
	m.byUser[userID] = token
	return token, nil
}

// Resolve maps a live token to its user. Expired tokens are removed.
func (m *MemorySessionManager) Resolve(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return uuid.Nil, false
	}
	if !m.now().Before(s.expiresAt) {
		m.removeLocked(token, s)
		return uuid.Nil, false
	}
	return s.userID, true
}

// End removes the session. Unknown tokens are not an error.
func (m *MemorySessionManager) End(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[token]; ok {
		m.removeLocked(token, s)
	}
	return nil
}

// Close stops the purge loop. It is safe to call more than once.
func (m *MemorySessionManager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemorySessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemorySessionManager) removeLocked(token string, s memorySession) {
	delete(m.sessions, token)
	if m.byUser[s.userID] == token {
		delete(m.byUser, s.userID)
	}
}

func (m *MemorySessionManager) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for token, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			m.removeLocked(token, s)
		}
	}
}

func (m *MemorySessionManager) purgeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.purge()
		case <-m.stop:
			return
		}
	}
}
