// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/club-leaderboard/judge"
)

func newRedisLock(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, "", ttl), mr
}

func TestLocal(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if _, err := l.Acquire(ctx); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked while held, got %v", err)
	}

	release()
	release() // second release is a no-op

	release2, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	release2()
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal().Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLocal_Concurrent(t *testing.T) {
	l := NewLocal()

	const workers = 20
	var acquired atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	hold := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := l.Acquire(context.Background())
			if err != nil {
				return
			}
			acquired.Add(1)
			<-hold
			release()
		}()
	}

	close(start)
	time.Sleep(50 * time.Millisecond)
	close(hold)
	wg.Wait()

	if acquired.Load() != 1 {
		t.Errorf("Expected exactly 1 holder, got %d", acquired.Load())
	}
}

func TestRedis(t *testing.T) {
	l, mr := newRedisLock(t, time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !mr.Exists(DefaultKey) {
		t.Fatal("Expected lock key to be set")
	}
	if ttl := mr.TTL(DefaultKey); ttl != time.Minute {
		t.Errorf("Expected TTL 1m, got %v", ttl)
	}

	if _, err := l.Acquire(ctx); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked while held, got %v", err)
	}

	release()
	if mr.Exists(DefaultKey) {
		t.Error("Expected lock key to be deleted on release")
	}

	release2, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	release2()
}

func TestRedis_ExpiredHolderDoesNotReleaseNewHolder(t *testing.T) {
	l, mr := newRedisLock(t, time.Second)
	ctx := context.Background()

	staleRelease, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	mr.FastForward(2 * time.Second)

	release, err := l.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}

	staleRelease()
	if !mr.Exists(DefaultKey) {
		t.Fatal("Stale holder released the new holder's lock")
	}

	release()
	if mr.Exists(DefaultKey) {
		t.Error("Expected lock key to be deleted by its holder")
	}
}

func TestRedis_Unreachable(t *testing.T) {
	l, mr := newRedisLock(t, time.Minute)
	mr.Close()

	_, err := l.Acquire(context.Background())
	if err == nil {
		t.Fatal("Expected error when Redis is unreachable")
	}
	if errors.Is(err, ErrLocked) {
		t.Error("Unreachable Redis must not be reported as ErrLocked")
	}
}

func TestDefaultTTLOutlivesSync(t *testing.T) {
	// A sync makes two judge requests before committing.
	if DefaultTTL <= 2*judge.DefaultTimeout {
		t.Errorf("DefaultTTL %s must exceed two judge timeouts (%s each)", DefaultTTL, judge.DefaultTimeout)
	}
}
