// Package scheduler runs the background goroutine that drives slot
// tabulation: spec.md leaves the trigger for settling a closed slot to "the
// host" rather than the engine itself, so something has to call
// TabulationService on a clock the way the original relied on being invoked
// by the host canister's heartbeat.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/service"
)

// Scheduler wires together the tabulation service and runs its periodic
// sweep goroutine. Call Start(ctx) once from main(); cancel the context to
// shut it down gracefully.
type Scheduler struct {
	tabulationSvc *service.TabulationService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(tabulationSvc *service.TabulationService, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{tabulationSvc: tabulationSvc, cfg: cfg, logger: logger}
}

// Start launches the tabulation sweep goroutine. It returns immediately;
// the loop runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.tabulationLoop(ctx)
	s.logger.Info("scheduler started", "tick_interval", s.cfg.Scheduler.TickInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// tabulationLoop
// ──────────────────────────────────────────────────────────────────────────────

// tabulationLoop scans for posts with closed, untabulated slots every tick
// and settles them. A single post's failure is logged and does not stop
// the sweep from continuing to the next post, matching
// TabulateDueSlots' own per-item error isolation.
func (s *Scheduler) tabulationLoop(ctx context.Context) {
	defer s.recoverAndLog("tabulationLoop")

	ticker := time.NewTicker(s.cfg.Scheduler.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tabulationLoop: shutting down")
			return
		case <-ticker.C:
			settled, err := s.tabulationSvc.TabulateDueSlots(ctx, time.Now().UTC(), s.cfg.Scheduler.BatchSize)
			if err != nil {
				s.logger.Error("tabulationLoop: TabulateDueSlots", "error", err)
				continue
			}
			if settled > 0 {
				s.logger.Info("tabulationLoop: slots settled", "count", settled)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside the goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running on the next start.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop", "loop", loop, "panic", r)
	}
}
