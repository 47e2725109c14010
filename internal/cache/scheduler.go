package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Flusher clears every cached entry. Satisfied by *Client.
type Flusher interface {
	FlushAll(ctx context.Context)
}

// FlushScheduler flushes the whole cache once per day at the configured
// cutover time. Per-entry TTLs expire at the same instant, so the scheduled
// flush is a backstop against clock skew, wrong TTLs, or entries written
// without one.
type FlushScheduler struct {
	flusher Flusher
	hour    int
	minute  int
	logger  *logrus.Logger

	// injectable for tests
	now   func() time.Time
	after func(d time.Duration) <-chan time.Time
}

func NewFlushScheduler(flusher Flusher, hour, minute int, logger *logrus.Logger) *FlushScheduler {
	return &FlushScheduler{
		flusher: flusher,
		hour:    hour,
		minute:  minute,
		logger:  logger,
		now:     time.Now,
		after:   time.After,
	}
}

// UntilNextFlush returns the time remaining from now until the next cutover.
// A call at or past today's cutover rolls to tomorrow's, so a call exactly
// at the cutover returns a full 24 hours. The result is always in (0, 24h].
func (s *FlushScheduler) UntilNextFlush(now time.Time) time.Duration {
	cutover := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !now.Before(cutover) {
		cutover = cutover.AddDate(0, 0, 1)
	}
	return cutover.Sub(now)
}

// TTL returns the expiry to attach to a cache entry written now: it expires
// exactly at the next cutover, never later.
func (s *FlushScheduler) TTL() time.Duration {
	return s.UntilNextFlush(s.now())
}

// Run blocks until ctx is cancelled, flushing the cache at every cutover.
func (s *FlushScheduler) Run(ctx context.Context) {
	for {
		wait := s.UntilNextFlush(s.now())
		s.logger.WithField("wait", wait.String()).Info("next cache flush scheduled")

		select {
		case <-ctx.Done():
			s.logger.Info("flush scheduler stopped")
			return
		case <-s.after(wait):
			s.flusher.FlushAll(ctx)
			s.logger.Info("daily cache flush completed")
		}
	}
}
