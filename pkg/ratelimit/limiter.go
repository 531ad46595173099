package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces actions against the render surface
type Limiter interface {
	// Wait blocks for the next pause or until ctx is done
	Wait(ctx context.Context) error
}

// Pacer waits a uniformly random duration in [Min, Max] on every call, so
// consecutive scrolls are not evenly spaced.
type Pacer struct {
	min time.Duration
	max time.Duration

	mu  sync.Mutex
	rng *rand.Rand

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer drawing pauses from [min, max]. Bounds are
// swapped if given in the wrong order.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		min, max = max, min
	}
	return &Pacer{
		min:   min,
		max:   max,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepContext,
	}
}

// Next draws the next pause without waiting
func (p *Pacer) Next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	span := p.max - p.min
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.rng.Int63n(int64(span)+1))
}

func (p *Pacer) Wait(ctx context.Context) error {
	return p.sleep(ctx, p.Next())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
