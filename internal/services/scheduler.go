package services

import (
	"context"
	"time"

	"github.com/ryobiguy/prize-platform/internal/metrics"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"github.com/ryobiguy/prize-platform/internal/utils"
	"golang.org/x/exp/slog"
)

// Scheduler periodically recomputes prize lifecycle statuses and triggers
// draws for prizes whose draw condition is met. It is an explicit service
// constructed once at startup and injected wherever a manual trigger is
// needed; there is no package-level singleton.
type Scheduler struct {
	prizeRepo    repositories.PrizeRepository
	prizeService PrizeService
	drawService  DrawService
	interval     time.Duration
	// cancelGrace is how long after endDate an under-minimum prize is left
	// pending before the sweep cancels and refunds it.
	cancelGrace time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a new Scheduler
func NewScheduler(
	prizeRepo repositories.PrizeRepository,
	prizeService PrizeService,
	drawService DrawService,
	interval time.Duration,
	cancelGrace time.Duration,
) *Scheduler {
	return &Scheduler{
		prizeRepo:    prizeRepo,
		prizeService: prizeService,
		drawService:  drawService,
		interval:     interval,
		cancelGrace:  cancelGrace,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		slog.Info("Scheduler started", "interval", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx, time.Now())
			case <-s.stop:
				slog.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				slog.Info("Scheduler context cancelled")
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// Sweep performs one pass: refresh statuses, draw due prizes, cancel expired
// under-minimum prizes. A failure on one prize never blocks the rest, and a
// sweep overlapping an admin-triggered draw is harmless: the conditional
// claim inside the draw engine turns the loser into an AlreadyDrawn no-op.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) {
	defer metrics.SchedulerSweeps.Inc()

	pending, err := s.prizeRepo.FindNonTerminal(ctx)
	if err != nil {
		slog.Error("Sweep: failed to list non-terminal prizes", "error", err)
		return
	}
	for _, p := range pending {
		s.prizeService.RecomputeStatus(ctx, p, now)
	}

	due, err := s.prizeRepo.FindEndedUndrawn(ctx, now)
	if err != nil {
		slog.Error("Sweep: failed to list due prizes", "error", err)
		return
	}

	for _, p := range due {
		prize := p
		switch {
		case len(prize.Participants) > 0 && prize.TotalEntries >= prize.MinimumEntries:
			if !drawDayMatches(prize.DrawDay, now) {
				slog.Debug("Sweep: prize waiting for its draw day", "prizeId", prize.ID, "drawDay", prize.DrawDay)
				continue
			}
			if _, err := s.drawService.DrawWinners(ctx, prize.ID); err != nil {
				slog.Error("Sweep: draw failed", "error", err, "prizeId", prize.ID)
			}
		case now.Sub(prize.EndDate) >= s.cancelGrace:
			// Minimum never met (or nobody entered) and the grace period has
			// run out: cancel and refund automatically.
			if _, err := s.prizeService.CancelPrize(ctx, prize.ID); err != nil {
				slog.Error("Sweep: auto-cancel failed", "error", err, "prizeId", prize.ID)
			} else {
				slog.Info("Sweep: prize auto-cancelled below minimum", "prizeId", prize.ID, "totalEntries", prize.TotalEntries, "minimumEntries", prize.MinimumEntries)
			}
		}
	}
}

// drawDayMatches reports whether today is the prize's configured draw day.
// An empty draw day means any day qualifies.
func drawDayMatches(drawDay string, now time.Time) bool {
	if drawDay == "" {
		return true
	}
	weekday, ok := utils.ParseWeekday(drawDay)
	if !ok {
		// Unparseable configuration should not freeze the prize forever
		return true
	}
	return now.Weekday() == weekday
}
