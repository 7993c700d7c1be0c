package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
)

const DefaultConnectionRetention = time.Hour

// HousekeepingService periodically prunes rows nobody will read again:
// expired devices, old rate limiter entries and lapsed recovery codes.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// ConnectionRetention must be at least the rate limiter window.
	ConnectionRetention time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultConnectionRetention
	}

	return &HousekeepingService{
		Store:               st,
		Logger:              logger,
		Interval:            interval,
		ConnectionRetention: retention,
		Now:                 time.Now,
		stopCh:              make(chan struct{}),
		doneCh:              make(chan struct{}),
	}
}

// Start begins the background worker. It returns immediately; call Stop to
// shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each deletion is independent; a failure in one
// does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	s.Logger.Debug("starting housekeeping cleanup")

	var successful int

	if n, err := s.Store.Devices().DeleteExpiredDevices(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired devices", "error", err)
	} else {
		s.Logger.Debug("deleted expired devices", "count", n)
		successful++
	}

	if n, err := s.Store.Connections().DeleteConnectionsBefore(ctx, now.Add(-s.ConnectionRetention)); err != nil {
		s.Logger.Error("failed to delete old connections", "error", err)
	} else {
		s.Logger.Debug("deleted old connections", "count", n)
		successful++
	}

	if n, err := s.Store.Users().ClearExpiredRecoveryCodes(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired recovery codes", "error", err)
	} else {
		s.Logger.Debug("cleared expired recovery codes", "count", n)
		successful++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
