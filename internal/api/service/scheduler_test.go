package service

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerNext(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	s := NewDigestScheduler(nil, slog.Default(), 8, loc)

	t.Run("before the hour fires same day", func(t *testing.T) {
		now := time.Date(2025, 3, 3, 6, 30, 0, 0, loc)
		fire := s.next(now)
		require.Equal(t, time.Date(2025, 3, 3, 8, 0, 0, 0, loc), fire)
	})

	t.Run("after the hour fires next day", func(t *testing.T) {
		now := time.Date(2025, 3, 3, 9, 0, 0, 0, loc)
		fire := s.next(now)
		require.Equal(t, time.Date(2025, 3, 4, 8, 0, 0, 0, loc), fire)
	})

	t.Run("exactly at the hour fires next day", func(t *testing.T) {
		now := time.Date(2025, 3, 3, 8, 0, 0, 0, loc)
		fire := s.next(now)
		require.Equal(t, time.Date(2025, 3, 4, 8, 0, 0, 0, loc), fire)
	})

	t.Run("tracks wall clock across the spring DST change", func(t *testing.T) {
		// DST starts 2025-03-09 in Toronto; the fire time stays 08:00
		// local even though the UTC offset shifts.
		now := time.Date(2025, 3, 8, 12, 0, 0, 0, loc)
		fire := s.next(now)
		require.Equal(t, time.Date(2025, 3, 9, 8, 0, 0, 0, loc), fire)
		require.Equal(t, 8, fire.In(loc).Hour())
	})

	t.Run("utc input is converted to the schedule timezone", func(t *testing.T) {
		// 11:00 UTC in winter is 06:00 in Toronto; still fires that day.
		now := time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)
		fire := s.next(now)
		require.Equal(t, time.Date(2025, 1, 15, 8, 0, 0, 0, loc).Unix(), fire.Unix())
	})
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewDigestScheduler(nil, slog.Default(), 8, time.UTC)

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
