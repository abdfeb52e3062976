package service

import (
	"context"
	"log/slog"
	"time"
)

// DigestScheduler fires the daily digest at a fixed local hour in the
// configured timezone, once per day per process.
type DigestScheduler struct {
	Digest   *DigestService
	Logger   *slog.Logger
	Hour     int
	Location *time.Location

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewDigestScheduler creates a scheduler that runs the digest at hour
// o'clock in loc. If loc is nil, UTC is used.
func NewDigestScheduler(digest *DigestService, logger *slog.Logger, hour int, loc *time.Location) *DigestScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &DigestScheduler{
		Digest:   digest,
		Logger:   logger,
		Hour:     hour,
		Location: loc,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to
// shut it down gracefully.
func (s *DigestScheduler) Start() {
	go s.run()
	s.Logger.Info("digest scheduler started",
		"hour", s.Hour,
		"timezone", s.Location.String(),
	)
}

// Stop shuts down the worker. Blocks until any in-progress run
// finishes.
func (s *DigestScheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("digest scheduler stopped")
}

// next returns the first instant at Hour o'clock in Location strictly
// after now. DST transitions are handled by time.Date snapping to the
// wall clock in loc.
func (s *DigestScheduler) next(now time.Time) time.Time {
	local := now.In(s.Location)
	fire := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, 0, 0, 0, s.Location)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

func (s *DigestScheduler) run() {
	defer close(s.doneCh)

	for {
		now := time.Now()
		fire := s.next(now)
		timer := time.NewTimer(fire.Sub(now))

		select {
		case <-timer.C:
			s.Logger.Info("digest run starting", "scheduled_for", fire)
			s.Digest.Run(context.Background(), time.Now().UTC())
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}
