// Package reaper removes rows that reads already treat as gone: expired
// lobbies and idle sessions. Correctness never depends on it running.
package reaper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"transcendent/backend/internal/metrics"
)

type LobbyPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type SessionPurger interface {
	PurgeIdle(ctx context.Context) (int64, error)
}

type Reaper struct {
	lobbies  LobbyPurger
	sessions SessionPurger
	interval time.Duration
	log      *zap.Logger
}

func New(lobbies LobbyPurger, sessions SessionPurger, interval time.Duration, log *zap.Logger) *Reaper {
	return &Reaper{
		lobbies:  lobbies,
		sessions: sessions,
		interval: interval,
		log:      log,
	}
}

// Run purges every interval until ctx is cancelled. A non-positive interval
// disables it.
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("Reaper disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("Reaper started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reaper stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge of both stores. A failure in one does not
// prevent the other.
func (r *Reaper) RunOnce(ctx context.Context) {
	if n, err := r.lobbies.PurgeExpired(ctx); err != nil {
		r.log.Error("Failed to purge expired lobbies", zap.Error(err))
	} else if n > 0 {
		metrics.ReapedTotal.WithLabelValues("lobby").Add(float64(n))
		r.log.Debug("Purged expired lobbies", zap.Int64("count", n))
	}

	if n, err := r.sessions.PurgeIdle(ctx); err != nil {
		r.log.Error("Failed to purge idle sessions", zap.Error(err))
	} else if n > 0 {
		metrics.ReapedTotal.WithLabelValues("session").Add(float64(n))
		r.log.Debug("Purged idle sessions", zap.Int64("count", n))
	}
}
