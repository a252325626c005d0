package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TurnLock gives one writer at a time exclusive use of a session.
//
// Refresh extends the lock and reports whether owner still holds it. TTL
// is how long a lock lives without a refresh; zero means it never expires.
type TurnLock interface {
	Acquire(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error)
	Refresh(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error)
	Release(ctx context.Context, sessionID uuid.UUID, owner string) error
	TTL() time.Duration
}

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// refreshScript extends the lock only if the caller still owns it.
var refreshScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`)

// RedisTurnLock shares the lock between api and worker processes.
type RedisTurnLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTurnLock(client *redis.Client, ttl time.Duration) *RedisTurnLock {
	return &RedisTurnLock{client: client, ttl: ttl}
}

func turnLockKey(sessionID uuid.UUID) string {
	return "session-lock:" + sessionID.String()
}

func (l *RedisTurnLock) Acquire(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, turnLockKey(sessionID), owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire turn lock: %w", err)
	}
	return ok, nil
}

func (l *RedisTurnLock) Refresh(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error) {
	n, err := refreshScript.Run(ctx, l.client, []string{turnLockKey(sessionID)}, owner, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to refresh turn lock: %w", err)
	}
	return n == 1, nil
}

func (l *RedisTurnLock) TTL() time.Duration {
	return l.ttl
}

func (l *RedisTurnLock) Release(ctx context.Context, sessionID uuid.UUID, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{turnLockKey(sessionID)}, owner).Err(); err != nil {
		return fmt.Errorf("failed to release turn lock: %w", err)
	}
	return nil
}

// MemoryTurnLock serves a single process.
type MemoryTurnLock struct {
	mu     sync.Mutex
	owners map[uuid.UUID]string
}

func NewMemoryTurnLock() *MemoryTurnLock {
	return &MemoryTurnLock{owners: make(map[uuid.UUID]string)}
}

func (l *MemoryTurnLock) Acquire(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[sessionID]; held {
		return false, nil
	}
	l.owners[sessionID] = owner
	return true, nil
}

func (l *MemoryTurnLock) Refresh(ctx context.Context, sessionID uuid.UUID, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owners[sessionID] == owner, nil
}

// TTL is zero: a memory lock lives until released.
func (l *MemoryTurnLock) TTL() time.Duration {
	return 0
}

func (l *MemoryTurnLock) Release(ctx context.Context, sessionID uuid.UUID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners[sessionID] == owner {
		delete(l.owners, sessionID)
	}
	return nil
}
