package main

import (
	"context"
	"sync"
	"time"
)

// throttle allows at most limit requests per window, and at most
// concurrency of them in flight.
type throttle struct {
	limit  int
	window time.Duration

	attempts     []time.Time
	attemptsLock sync.Mutex

	concurrentReqs chan struct{}
}

func newThrottle(limit int, window time.Duration, concurrency int) *throttle {
	t := &throttle{
		limit:          limit,
		window:         window,
		concurrentReqs: make(chan struct{}, concurrency),
	}
	for n := 0; n < concurrency; n++ {
		t.concurrentReqs <- struct{}{}
	}
	return t
}

// Acquire blocks for a concurrency token and a free rate slot. The returned
// func gives the token back.
func (t *throttle) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-t.concurrentReqs:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := t.wait(ctx); err != nil {
		t.concurrentReqs <- struct{}{}
		return nil, err
	}
	return func() {
		t.concurrentReqs <- struct{}{}
	}, nil
}

func (t *throttle) wait(ctx context.Context) error {
	for {
		t.attemptsLock.Lock()
		now := time.Now()
		att := t.attempts
		if len(att) < t.limit || now.Sub(att[0]) > t.window {
			att = append(att, now)
			if len(att) > t.limit {
				att = att[1:]
			}
			t.attempts = att
			t.attemptsLock.Unlock()
			return nil
		}
		next := att[0].Add(t.window).Sub(now) + time.Millisecond
		t.attemptsLock.Unlock()

		timer := time.NewTimer(next)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
