package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottle_Window(t *testing.T) {
	th := newThrottle(2, 100*time.Millisecond, 4)
	ctx := context.Background()

	start := time.Now()
	for n := 0; n < 3; n++ {
		done, err := th.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		done()
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("third request after %v, want at least one window", elapsed)
	}
}

func TestThrottle_Cancel(t *testing.T) {
	th := newThrottle(1, time.Hour, 1)
	done, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := th.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	// the concurrency token was returned
	select {
	case <-th.concurrentReqs:
	default:
		t.Fatal("concurrency token leaked")
	}
}

func TestThrottle_Concurrency(t *testing.T) {
	th := newThrottle(100, time.Second, 1)
	done, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := th.Acquire(ctx); err == nil {
		t.Fatal("second Acquire succeeded while the only token was held")
	}
	done()
	done2, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	done2()
}
