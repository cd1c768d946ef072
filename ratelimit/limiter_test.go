package ratelimit

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func TestLimiter_BlocksThirdSubmissionThenResets(t *testing.T) {
	req := require.New(t)
	clock := newClock()
	limiter := NewLimiter(NewMemoryStore(), WithClock(clock.Now))

	for range 2 {
		decision, err := limiter.Check()
		req.NoError(err)
		req.True(decision.Allowed)
		_, err = limiter.Record()
		req.NoError(err)
		clock.Advance(time.Minute)
	}

	decision, err := limiter.Check()
	req.NoError(err)
	req.False(decision.Allowed)
	req.Equal(58, decision.RemainingMinutes)
	req.Equal(58*time.Minute, decision.Remaining)

	clock.Advance(59 * time.Minute)
	decision, err = limiter.Check()
	req.NoError(err)
	req.True(decision.Allowed)

	state, err := limiter.Record()
	req.NoError(err)
	req.Equal(1, state.Count)
	req.Equal(clock.Now(), *state.Timestamp)
}

func TestLimiter_RemainingMinutesRoundUp(t *testing.T) {
	req := require.New(t)
	clock := newClock()
	limiter := NewLimiter(NewMemoryStore(), WithClock(clock.Now))
	_, _ = limiter.Record()
	_, _ = limiter.Record()

	clock.Advance(59*time.Minute + 30*time.Second)
	decision, err := limiter.Check()
	req.NoError(err)
	req.False(decision.Allowed)
	req.Equal(1, decision.RemainingMinutes)
}

func TestLimiter_TimestampIsTheFirstSubmission(t *testing.T) {
	req := require.New(t)
	clock := newClock()
	start := clock.Now()
	limiter := NewLimiter(NewMemoryStore(), WithClock(clock.Now), WithMax(3))

	_, err := limiter.Record()
	req.NoError(err)
	clock.Advance(10 * time.Minute)
	state, err := limiter.Record()
	req.NoError(err)
	req.Equal(2, state.Count)
	req.Equal(start, *state.Timestamp)
}

func TestLimiter_CustomWindow(t *testing.T) {
	req := require.New(t)
	clock := newClock()
	limiter := NewLimiter(NewMemoryStore(), WithClock(clock.Now), WithMax(1), WithWindow(10*time.Minute))
	_, err := limiter.Record()
	req.NoError(err)

	decision, err := limiter.Check()
	req.NoError(err)
	req.Equal(10, decision.RemainingMinutes)

	clock.Advance(10 * time.Minute)
	decision, err = limiter.Check()
	req.NoError(err)
	req.True(decision.Allowed)
}

func TestFileStore(t *testing.T) {
	req := require.New(t)
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"))

	state, err := store.Load()
	req.NoError(err)
	req.Equal(State{}, state)

	clock := newClock()
	limiter := NewLimiter(store, WithClock(clock.Now))
	_, err = limiter.Record()
	req.NoError(err)
	_, err = limiter.Record()
	req.NoError(err)

	reopened := NewLimiter(NewFileStore(store.path), WithClock(clock.Now))
	decision, err := reopened.Check()
	req.NoError(err)
	req.False(decision.Allowed)
	req.Equal(60, decision.RemainingMinutes)

	req.NoError(store.Clear())
	req.NoError(store.Clear())
	state, err = store.Load()
	req.NoError(err)
	req.Zero(state.Count)
}

func TestLimiter_CountdownClosesWhenWindowElapses(t *testing.T) {
	req := require.New(t)
	clock := newClock()
	store := NewMemoryStore()
	limiter := NewLimiter(store, WithClock(clock.Now))
	_, _ = limiter.Record()
	_, _ = limiter.Record()

	ticks := limiter.Countdown(context.Background(), time.Millisecond)
	req.Equal(60, <-ticks)

	clock.Advance(30 * time.Minute)
	// Drain until the countdown observes the advanced clock.
	var last int
	for remaining := range ticks {
		last = remaining
		if remaining == 30 {
			clock.Advance(31 * time.Minute)
		}
	}
	req.LessOrEqual(last, 30)

	state, err := store.Load()
	req.NoError(err)
	req.Equal(State{}, state)
}

func TestLimiter_CountdownStopsWithContext(t *testing.T) {
	clock := newClock()
	limiter := NewLimiter(NewMemoryStore(), WithClock(clock.Now))
	_, _ = limiter.Record()
	_, _ = limiter.Record()

	ctx, cancel := context.WithCancel(context.Background())
	ticks := limiter.Countdown(ctx, time.Hour)
	require.Equal(t, 60, <-ticks)
	cancel()
	for range ticks {
	}
}

func TestLimiter_CountdownClosedWhenAllowed(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	_, ok := <-limiter.Countdown(context.Background(), time.Millisecond)
	require.False(t, ok)
}
