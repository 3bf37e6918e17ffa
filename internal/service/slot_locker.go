package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotLockNotAcquired is returned when another writer currently holds the
// lock for the same (doctor, date, slot) triple.
var ErrSlotLockNotAcquired = errors.New("slot lock not acquired")

// SlotKey identifies the critical section for one bookable slot occurrence.
type SlotKey struct {
	DoctorID  uuid.UUID
	Date      string // YYYY-MM-DD
	SlotLabel string // canonical "15:04" label
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.DoctorID, k.Date, k.SlotLabel)
}

// SlotLocker serializes the read-check-write sequence of booking operations
// per slot occurrence. Different slots and different doctors proceed fully
// in parallel; within one key at most one caller runs fn at a time.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error
}

// =============================================================================
// Redis implementation
// =============================================================================

// unlockScript deletes the lock key only if the caller still owns it, so an
// expired lock taken over by another writer is never released by the first.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

type redisSlotLocker struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

// NewRedisSlotLocker creates a locker backed by a per-slot Redis key
// (SET NX with TTL). Suitable when the API runs on more than one node.
func NewRedisSlotLocker(client *redis.Client, log *logrus.Logger, ttl time.Duration) SlotLocker {
	return &redisSlotLocker{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error {
	lockKey := fmt.Sprintf("lock:slot:%s", key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrSlotLockNotAcquired
	}

	defer func() {
		if _, err := unlockScript.Run(ctx, l.client, []string{lockKey}, token).Result(); err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warnf("Failed to release slot lock %s: %+v", lockKey, err)
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

// =============================================================================
// In-process implementation
// =============================================================================

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// localSlotLocker serializes slot writers with an in-memory mutex per key.
// Correct for a single-node deployment; the Redis locker is the multi-node
// equivalent. Stale entries are collected by a background loop so the table
// does not grow without bound over long uptimes.
type localSlotLocker struct {
	log     *logrus.Logger
	slotMu  sync.Map // map[string]*mutexWithTimestamp
	stopCh  chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewLocalSlotLocker creates an in-process locker. Call Stop during graceful
// shutdown.
func NewLocalSlotLocker(log *logrus.Logger) *localSlotLocker {
	l := &localSlotLocker{
		log:    log,
		stopCh: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

func (l *localSlotLocker) WithSlotLock(ctx context.Context, key SlotKey, fn func(ctx context.Context) error) error {
	keyStr := key.String()
	for {
		mt := l.getMutex(keyStr)
		if !mt.mu.TryLock() {
			return ErrSlotLockNotAcquired
		}
		// The cleanup loop may have evicted this entry between the map
		// load and the lock. Holding an evicted mutex would let a second
		// writer lock a fresh entry for the same key, so retry until the
		// held mutex is still the one in the table.
		if current, ok := l.slotMu.Load(keyStr); !ok || current != mt {
			mt.mu.Unlock()
			continue
		}
		mt.lastUsed.Store(time.Now().Unix())
		defer mt.mu.Unlock()
		return fn(ctx)
	}
}

// Stop shuts down the cleanup goroutine. Safe to call multiple times.
func (l *localSlotLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopCh)
		l.wg.Wait()
	}
}

func (l *localSlotLocker) getMutex(key string) *mutexWithTimestamp {
	mt, _ := l.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (l *localSlotLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety.
// The lastUsed check happens inside the lock so a writer that grabbed the
// mutex between our load and lock is never evicted. A writer that loaded
// the entry but has not locked it yet can still lose it here; WithSlotLock
// detects that case and retries on the fresh entry.
func (l *localSlotLocker) cleanupStaleMutexes() {
	cutoff := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	l.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff {
				l.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}
