package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlusher struct {
	calls int32
}

func (f *fakeFlusher) FlushAll(ctx context.Context) {
	atomic.AddInt32(&f.calls, 1)
}

func (f *fakeFlusher) count() int32 {
	return atomic.LoadInt32(&f.calls)
}

func TestUntilNextFlushBeforeCutover(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 4*time.Hour+11*time.Minute, s.UntilNextFlush(now))
}

func TestUntilNextFlushAfterCutover(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, 18*time.Hour+11*time.Minute, s.UntilNextFlush(now))
}

// A call exactly at the cutover rolls to tomorrow's cutover. Zero would be
// stored by Redis as "no expiry", which must never happen.
func TestUntilNextFlushAtCutoverExactly(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	now := time.Date(2024, 3, 15, 14, 11, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, s.UntilNextFlush(now))
}

func TestUntilNextFlushAlwaysPositiveAndBounded(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48*60; i++ {
		d := s.UntilNextFlush(now)
		assert.Greater(t, d, time.Duration(0), "now=%s", now)
		assert.LessOrEqual(t, d, 24*time.Hour, "now=%s", now)
		now = now.Add(time.Minute)
	}
}

func TestUntilNextFlushDiscontinuityAtCutover(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	justBefore := time.Date(2024, 3, 15, 14, 10, 59, 0, time.UTC)
	justAfter := time.Date(2024, 3, 15, 14, 11, 1, 0, time.UTC)

	assert.Equal(t, time.Second, s.UntilNextFlush(justBefore))
	assert.Equal(t, 24*time.Hour-time.Second, s.UntilNextFlush(justAfter))
}

func TestRunFlushesAtCutoverAndStopsOnCancel(t *testing.T) {
	flusher := &fakeFlusher{}
	s := NewFlushScheduler(flusher, 14, 11, testLogger())
	s.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}

	fired := make(chan time.Time)
	waits := make(chan time.Duration, 2)
	s.after = func(d time.Duration) <-chan time.Time {
		waits <- d
		return fired
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Equal(t, 4*time.Hour+11*time.Minute, <-waits)

	fired <- time.Now()
	require.Eventually(t, func() bool { return flusher.count() == 1 }, time.Second, 10*time.Millisecond)

	// the loop reschedules after flushing
	assert.Equal(t, 4*time.Hour+11*time.Minute, <-waits)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
	assert.Equal(t, int32(1), flusher.count())
}

func TestTTLUsesInjectedClock(t *testing.T) {
	s := NewFlushScheduler(&fakeFlusher{}, 14, 11, testLogger())
	s.now = func() time.Time {
		return time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, 11*time.Minute, s.TTL())
}
