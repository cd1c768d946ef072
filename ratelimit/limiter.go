package ratelimit

import (
	"context"
	"math"
	"time"
)

const (
	DefaultMaxSubmissions = 2
	DefaultWindow         = time.Hour
)

// Decision is the outcome of Check. RemainingMinutes is rounded up.
type Decision struct {
	Allowed          bool
	Remaining        time.Duration
	RemainingMinutes int
}

// Limiter is an advisory per-client submission counter. It offers no protection
// against a client that clears its state or calls the API directly.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

func WithMax(max int) Option {
	return func(l *Limiter) { l.max = max }
}

func WithWindow(window time.Duration) Option {
	return func(l *Limiter) { l.window = window }
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, max: DefaultMaxSubmissions, window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check reports whether a new submission may be sent. An elapsed window clears the state.
func (l *Limiter) Check() (Decision, error) {
	state, err := l.store.Load()
	if err != nil {
		return Decision{}, err
	}
	if state.Count < l.max {
		return Decision{Allowed: true}, nil
	}
	if state.Timestamp != nil {
		remaining := l.window - l.now().Sub(*state.Timestamp)
		if remaining > 0 {
			return Decision{
				Allowed:          false,
				Remaining:        remaining,
				RemainingMinutes: int(math.Ceil(remaining.Minutes())),
			}, nil
		}
	}
	if err := l.store.Clear(); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true}, nil
}

// Record counts a successful submission. The window starts at the first one.
func (l *Limiter) Record() (State, error) {
	state, err := l.store.Load()
	if err != nil {
		return State{}, err
	}
	state.Count++
	if state.Timestamp == nil {
		now := l.now()
		state.Timestamp = &now
	}
	if err := l.store.Save(state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Countdown emits the remaining whole minutes every interval while the client is blocked.
// The channel closes once submissions are allowed again, on error, or when ctx is done.
func (l *Limiter) Countdown(ctx context.Context, interval time.Duration) <-chan int {
	out := make(chan int, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			decision, err := l.Check()
			if err != nil || decision.Allowed {
				return
			}
			select {
			case out <- decision.RemainingMinutes:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
