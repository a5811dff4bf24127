package repository

import (
	"context"
	"time"

	"github.com/hilthontt/parley/internal/domain"
	"github.com/hilthontt/parley/internal/infrastructure/logging"
)

// Reaper periodically evicts rooms whose lifetime has run out: completed
// rooms past the completion TTL, and optionally active rooms that have
// outlived the active TTL (0 disables that policy).
type Reaper struct {
	repo         domain.RoomRepository
	interval     time.Duration
	completedTTL time.Duration
	activeTTL    time.Duration
	logger       logging.Logger
	onExpire     func()
}

type ReaperOptions struct {
	Interval     time.Duration
	CompletedTTL time.Duration
	ActiveTTL    time.Duration
	// OnExpire is invoked once per evicted room.
	OnExpire func()
}

func NewReaper(repo domain.RoomRepository, logger logging.Logger, opts ReaperOptions) *Reaper {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.CompletedTTL <= 0 {
		opts.CompletedTTL = 10 * time.Second
	}

	return &Reaper{
		repo:         repo,
		interval:     opts.Interval,
		completedTTL: opts.CompletedTTL,
		activeTTL:    opts.ActiveTTL,
		logger:       logger,
		onExpire:     opts.OnExpire,
	}
}

// Run blocks scanning the registry until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs a single scan. A room is expired first and evicted second,
// so a request racing the reaper either completes against the live room or
// observes not-found; there is no partial state.
func (r *Reaper) Sweep(ctx context.Context) {
	now := time.Now()

	for _, room := range r.repo.Rooms(ctx) {
		state, createdAt, completedAt := room.Lifecycle()

		expired := false
		switch state {
		case domain.StateCompleted:
			expired = now.Sub(completedAt) >= r.completedTTL
		case domain.StateActive:
			expired = r.activeTTL > 0 && now.Sub(createdAt) >= r.activeTTL
		}

		if !expired {
			continue
		}

		room.Expire()
		if err := r.repo.Evict(ctx, room.ID()); err != nil {
			r.logger.Error(logging.Registry, logging.Reaper, "failed to evict room",
				map[logging.ExtraKey]any{"room": room.ID(), logging.ErrorMessage: err.Error()})
			continue
		}

		if r.onExpire != nil {
			r.onExpire()
		}

		r.logger.Info(logging.Registry, logging.Reaper, "room expired",
			map[logging.ExtraKey]any{"room": room.ID(), "state": state.String()})
	}
}
