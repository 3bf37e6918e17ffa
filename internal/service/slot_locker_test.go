package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testKey(label string) SlotKey {
	return SlotKey{
		DoctorID:  uuid.MustParse("5f1c3b8e-0000-0000-0000-000000000001"),
		Date:      "2026-09-14",
		SlotLabel: label,
	}
}

func TestLocalSlotLockerSerializes(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	defer locker.Stop()

	key := testKey("09:00")
	entered := make(chan struct{})
	release := make(chan struct{})

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		firstErr = locker.WithSlotLock(context.Background(), key, func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	// A second writer on the same key must not get the lock.
	err := locker.WithSlotLock(context.Background(), key, func(ctx context.Context) error {
		t.Error("second writer ran while first held the lock")
		return nil
	})
	if !errors.Is(err, ErrSlotLockNotAcquired) {
		t.Errorf("contended lock error = %v, want %v", err, ErrSlotLockNotAcquired)
	}

	close(release)
	<-done
	if firstErr != nil {
		t.Errorf("first writer error = %v", firstErr)
	}

	// After release the key is free again.
	if err := locker.WithSlotLock(context.Background(), key, func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("relock after release failed: %v", err)
	}
}

func TestLocalSlotLockerIndependentKeys(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	defer locker.Stop()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		locker.WithSlotLock(context.Background(), testKey("09:00"), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	// A different slot of the same doctor proceeds while 09:00 is held.
	err := locker.WithSlotLock(context.Background(), testKey("10:00"), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Errorf("independent key was blocked: %v", err)
	}

	// Same label, different doctor is independent too.
	other := SlotKey{DoctorID: uuid.New(), Date: "2026-09-14", SlotLabel: "09:00"}
	if err := locker.WithSlotLock(context.Background(), other, func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("other doctor's key was blocked: %v", err)
	}

	close(release)
	<-done
}

func TestLocalSlotLockerPropagatesError(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	defer locker.Stop()

	sentinel := errors.New("boom")
	err := locker.WithSlotLock(context.Background(), testKey("09:00"), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %v", err, sentinel)
	}
}

func TestLocalSlotLockerConcurrentContention(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	defer locker.Stop()

	key := testKey("14:00")
	const writers = 8
	results := make([]error, writers)

	var inCritical atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = locker.WithSlotLock(context.Background(), key, func(ctx context.Context) error {
				if inCritical.Add(1) != 1 {
					t.Error("two writers inside the critical section")
				}
				time.Sleep(5 * time.Millisecond)
				inCritical.Add(-1)
				return nil
			})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotLockNotAcquired):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won < 1 {
		t.Errorf("winners = %d, want at least 1", won)
	}
}

// TestLocalSlotLockerCleanupRace interleaves writers with an aggressive
// cleanup loop that evicts every entry it can. A writer whose entry is
// evicted between the table load and the lock must retry on the fresh entry
// instead of holding a detached mutex, so mutual exclusion has to survive.
func TestLocalSlotLockerCleanupRace(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	defer locker.Stop()

	key := testKey("11:00")
	var inCritical atomic.Int32

	stopCleaner := make(chan struct{})
	var cleaner sync.WaitGroup
	cleaner.Add(1)
	go func() {
		defer cleaner.Done()
		for {
			select {
			case <-stopCleaner:
				return
			default:
			}
			// Backdate every entry so the cleaner treats it as stale.
			locker.slotMu.Range(func(_, value any) bool {
				value.(*mutexWithTimestamp).lastUsed.Store(0)
				return true
			})
			locker.cleanupStaleMutexes()
		}
	}()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				err := locker.WithSlotLock(context.Background(), key, func(ctx context.Context) error {
					if inCritical.Add(1) != 1 {
						t.Error("two writers inside the critical section")
					}
					inCritical.Add(-1)
					return nil
				})
				if err != nil && !errors.Is(err, ErrSlotLockNotAcquired) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	close(stopCleaner)
	cleaner.Wait()
}

func TestLocalSlotLockerStopIdempotent(t *testing.T) {
	locker := NewLocalSlotLocker(testLogger())
	locker.Stop()
	locker.Stop()
}

func TestSlotKeyString(t *testing.T) {
	key := testKey("09:00")
	want := "5f1c3b8e-0000-0000-0000-000000000001:2026-09-14:09:00"
	if got := key.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
