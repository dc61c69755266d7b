package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/metrics"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// DrawService selects winners for ended prizes
type DrawService interface {
	// DrawWinners runs the full draw for one prize: claim, select, persist,
	// notify. Repeating it on a drawn prize fails with ErrAlreadyDrawn and
	// changes nothing.
	DrawWinners(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error)
}

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl implements the weighted winner selection
type DrawServiceImpl struct {
	prizeRepo    repositories.PrizeRepository
	userRepo     repositories.UserRepository
	notifier     NotificationService
	achievements AchievementService

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrawService creates a new DrawServiceImpl seeded from the current time
func NewDrawService(
	prizeRepo repositories.PrizeRepository,
	userRepo repositories.UserRepository,
	notifier NotificationService,
	achievements AchievementService,
) *DrawServiceImpl {
	return NewDrawServiceWithRand(prizeRepo, userRepo, notifier, achievements, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewDrawServiceWithRand creates a DrawServiceImpl with an explicit random
// source, which deterministic tests rely on.
func NewDrawServiceWithRand(
	prizeRepo repositories.PrizeRepository,
	userRepo repositories.UserRepository,
	notifier NotificationService,
	achievements AchievementService,
	rng *rand.Rand,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		prizeRepo:    prizeRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		achievements: achievements,
		rng:          rng,
	}
}

// DrawWinners executes the draw for a prize.
//
// The conditional claim in the repository is the concurrency guard: only one
// caller (scheduler sweep or admin) can move the prize into the drawing
// status, and committed winners make every later claim fail with
// ErrAlreadyDrawn. Entry commitments are rejected while the prize is not
// active, so no entries can land mid-draw.
func (s *DrawServiceImpl) DrawWinners(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error) {
	prize, err := s.prizeRepo.ClaimForDraw(ctx, prizeID)
	if err != nil {
		metrics.DrawsExecuted.WithLabelValues("rejected").Inc()
		return nil, err
	}

	release := func(reason error) {
		if revertErr := s.prizeRepo.SetStatus(ctx, prizeID, models.PrizeStatusDrawing, models.PrizeStatusEnded); revertErr != nil {
			slog.Error("Failed to release prize after aborted draw", "error", revertErr, "prizeId", prizeID, "reason", reason)
		}
	}

	if len(prize.Participants) == 0 {
		release(apperrors.ErrNoEntries)
		metrics.DrawsExecuted.WithLabelValues("no_entries").Inc()
		return nil, fmt.Errorf("cannot draw prize %s: %w", prizeID.Hex(), apperrors.ErrNoEntries)
	}
	if prize.TotalEntries < prize.MinimumEntries {
		release(apperrors.ErrMinimumNotMet)
		metrics.DrawsExecuted.WithLabelValues("minimum_not_met").Inc()
		return nil, fmt.Errorf("prize %s has %d of %d required entries: %w",
			prizeID.Hex(), prize.TotalEntries, prize.MinimumEntries, apperrors.ErrMinimumNotMet)
	}

	started := time.Now()
	s.mu.Lock()
	selected := selectWeightedWinners(s.rng, prize.Participants, prize.TotalWinners)
	s.mu.Unlock()
	metrics.DrawDuration.Observe(time.Since(started).Seconds())

	now := time.Now()
	winners := make([]models.PrizeWinner, 0, len(selected))
	for _, p := range selected {
		winners = append(winners, models.PrizeWinner{
			UserID:   p.UserID,
			Username: p.Username,
			DrawnAt:  now,
			Notified: false,
		})
	}

	// Step 4 of the draw: once this commits, the draw is final. Everything
	// after (win logs, stats, notifications) is best-effort bookkeeping.
	if err := s.prizeRepo.SetWinners(ctx, prizeID, winners); err != nil {
		release(err)
		metrics.DrawsExecuted.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist winners for prize %s: %w", prizeID.Hex(), err)
	}
	prize.Winners = winners
	prize.Status = models.PrizeStatusDrawn
	metrics.DrawsExecuted.WithLabelValues("drawn").Inc()
	metrics.WinnersSelected.Add(float64(len(winners)))
	slog.Info("Draw completed", "prizeId", prizeID, "title", prize.Title, "participants", len(prize.Participants), "totalEntries", prize.TotalEntries, "winners", len(winners))

	for _, w := range winners {
		if err := s.userRepo.AppendWin(ctx, w.UserID, models.Win{PrizeID: prizeID, WonAt: now}); err != nil {
			slog.Error("Failed to append win record", "error", err, "userId", w.UserID, "prizeId", prizeID)
		}
		if err := s.userRepo.IncrementStat(ctx, w.UserID, models.StatPrizesWon, 1); err != nil {
			slog.Error("Failed to bump prizesWon stat", "error", err, "userId", w.UserID)
		}
		if s.achievements != nil {
			if err := s.achievements.SyncUser(ctx, w.UserID); err != nil {
				slog.Warn("Achievement sync after win failed", "error", err, "userId", w.UserID)
			}
		}
		s.notifyWinner(ctx, prize, w)
	}

	return prize, nil
}

// notifyWinner sends the winner notification. Failure is logged, never fatal:
// the win is final once the winners are persisted, and delivery is retried
// out of band.
func (s *DrawServiceImpl) notifyWinner(ctx context.Context, prize *models.Prize, winner models.PrizeWinner) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyWinner(ctx, winner.UserID, prize); err != nil {
		slog.Error("Winner notification failed", "error", err, "userId", winner.UserID, "prizeId", prize.ID)
		return
	}
	if err := s.prizeRepo.MarkWinnerNotified(ctx, prize.ID, winner.UserID); err != nil {
		slog.Error("Failed to mark winner notified", "error", err, "userId", winner.UserID, "prizeId", prize.ID)
	}
}

// selectWeightedWinners draws up to n unique winners from the participants,
// each weighted by their committed entries. Instead of materialising one slot
// per ticket it picks a uniform value in [0, remaining total weight) and walks
// the list subtracting weights, which keeps memory independent of the entry
// counts. A selected participant is removed with their whole weight, so no
// user can win twice; with fewer distinct participants than n the draw simply
// returns fewer winners.
func selectWeightedWinners(rng *rand.Rand, participants []models.Participant, n int) []models.Participant {
	pool := make([]models.Participant, 0, len(participants))
	var total int64
	for _, p := range participants {
		if p.Entries <= 0 {
			continue
		}
		pool = append(pool, p)
		total += p.Entries
	}

	var winners []models.Participant
	for len(winners) < n && len(pool) > 0 {
		ticket := rng.Int63n(total)
		idx := 0
		for ticket >= pool[idx].Entries {
			ticket -= pool[idx].Entries
			idx++
		}
		winner := pool[idx]
		winners = append(winners, winner)
		total -= winner.Entries
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return winners
}
