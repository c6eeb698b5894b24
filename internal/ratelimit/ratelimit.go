package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultWindow is the rolling interval requests are counted over.
	DefaultWindow = time.Hour

	// DefaultCap is the maximum number of remote requests per window.
	DefaultCap = 20
)

// Log persists request timestamps across process restarts.
type Log interface {
	LoadTimestamps(ctx context.Context) ([]time.Time, error)
	SaveTimestamps(ctx context.Context, stamps []time.Time) error
}

// Decision is the outcome of a pre-flight check.
type Decision struct {
	Allowed           bool
	Remaining         int
	MinutesUntilReset int
}

// Limiter enforces a sliding-window cap on remote requests. The persisted
// timestamp set is loaded once at construction and mirrored in memory;
// every mutation is written back synchronously. Local-only operations are
// never routed through the limiter.
type Limiter struct {
	mu     sync.Mutex
	log    Log
	stamps []time.Time
	window time.Duration
	cap    int
	now    func() time.Time
}

func New(ctx context.Context, log Log) (*Limiter, error) {
	return NewWithConfig(ctx, log, DefaultWindow, DefaultCap, time.Now)
}

func NewWithConfig(ctx context.Context, log Log, window time.Duration, capacity int, now func() time.Time) (*Limiter, error) {
	stamps, err := log.LoadTimestamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage log: %w", err)
	}

	return &Limiter{
		log:    log,
		stamps: stamps,
		window: window,
		cap:    capacity,
		now:    now,
	}, nil
}

// Check prunes expired timestamps and reports whether another request may
// proceed. It does not consume quota; call Record after the remote call
// succeeds. Failed attempts never count against the cap.
func (l *Limiter) Check(ctx context.Context) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pruned, changed := l.prune(now)
	l.stamps = pruned

	if changed {
		if err := l.log.SaveTimestamps(ctx, l.stamps); err != nil {
			return Decision{}, fmt.Errorf("failed to persist usage log: %w", err)
		}
	}

	if len(l.stamps) < l.cap {
		return Decision{Allowed: true, Remaining: l.cap - len(l.stamps)}, nil
	}

	oldest := l.stamps[0]
	wait := oldest.Add(l.window).Sub(now)
	minutes := int((wait + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return Decision{Allowed: false, MinutesUntilReset: minutes}, nil
}

// Record appends the current time to the usage log. Called only after a
// successful remote operation.
func (l *Limiter) Record(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stamps = append(l.stamps, l.now())
	if err := l.log.SaveTimestamps(ctx, l.stamps); err != nil {
		return fmt.Errorf("failed to persist usage log: %w", err)
	}
	return nil
}

// Used returns the number of requests inside the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	pruned, _ := l.prune(l.now())
	return len(pruned)
}

func (l *Limiter) Cap() int {
	return l.cap
}

// prune drops timestamps older than the window, keeping order. Stamps are
// appended chronologically so the slice stays sorted.
func (l *Limiter) prune(now time.Time) ([]time.Time, bool) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	return l.stamps[i:], i > 0
}
