package listsync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "listsync:lock:"

// ListLocker serializes syncs per list. TryLock returns ErrSyncInProgress
// when another sync holds the lock; the returned release function is safe to
// call exactly once.
type ListLocker interface {
	TryLock(ctx context.Context, listID string, ttl time.Duration) (release func(), err error)
}

// MemoryLocker is a process-local locker for single-instance deployments and
// tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMemoryLocker constructs a process-local locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (l *MemoryLocker) TryLock(_ context.Context, listID string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[listID] {
		return nil, ErrSyncInProgress
	}
	l.held[listID] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, listID)
	}, nil
}

// releaseScript deletes the lock key only if this process still owns it, so
// an expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker coordinates syncs across instances using SET NX with a TTL.
// The TTL bounds how long a crashed instance can hold a list hostage.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, listID string, ttl time.Duration) (func(), error) {
	key := lockKeyPrefix + listID
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
