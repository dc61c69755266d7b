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

// spinExperience is the fixed XP grant per wheel spin
const spinExperience = 5

// WheelService runs the instant-win wheel
type WheelService interface {
	Outcomes() []models.WheelOutcome
	// CanSpin reports whether the cooldown has elapsed, and if not, how long
	// remains.
	CanSpin(ctx context.Context, userID primitive.ObjectID) (bool, time.Duration, error)
	// Spin draws one outcome and applies its reward. The reward, stat bumps
	// and cooldown refresh land in a single conditional update, so two racing
	// requests cannot both win.
	Spin(ctx context.Context, userID primitive.ObjectID) (*models.WheelOutcome, error)
}

// Compile-time check to ensure WheelServiceImpl implements WheelService
var _ WheelService = (*WheelServiceImpl)(nil)

// WheelServiceImpl implements WheelService
type WheelServiceImpl struct {
	userRepo     repositories.UserRepository
	txRepo       repositories.EntryTransactionRepository
	achievements AchievementService
	outcomes     []models.WheelOutcome
	cooldown     time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWheelService creates a WheelServiceImpl seeded from the current time
func NewWheelService(
	userRepo repositories.UserRepository,
	txRepo repositories.EntryTransactionRepository,
	achievements AchievementService,
	outcomes []models.WheelOutcome,
	cooldown time.Duration,
) *WheelServiceImpl {
	return NewWheelServiceWithRand(userRepo, txRepo, achievements, outcomes, cooldown, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWheelServiceWithRand creates a WheelServiceImpl with an explicit random
// source for deterministic tests.
func NewWheelServiceWithRand(
	userRepo repositories.UserRepository,
	txRepo repositories.EntryTransactionRepository,
	achievements AchievementService,
	outcomes []models.WheelOutcome,
	cooldown time.Duration,
	rng *rand.Rand,
) *WheelServiceImpl {
	if len(outcomes) == 0 {
		outcomes = models.DefaultWheelOutcomes
	}
	return &WheelServiceImpl{
		userRepo:     userRepo,
		txRepo:       txRepo,
		achievements: achievements,
		outcomes:     outcomes,
		cooldown:     cooldown,
		rng:          rng,
	}
}

// Outcomes returns the wheel table
func (s *WheelServiceImpl) Outcomes() []models.WheelOutcome {
	out := make([]models.WheelOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// CanSpin reports cooldown state for a user
func (s *WheelServiceImpl) CanSpin(ctx context.Context, userID primitive.ObjectID) (bool, time.Duration, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	if user.LastWheelSpin.IsZero() {
		return true, 0, nil
	}
	elapsed := time.Since(user.LastWheelSpin)
	if elapsed >= s.cooldown {
		return true, 0, nil
	}
	return false, s.cooldown - elapsed, nil
}

// Spin draws an outcome and awards it
func (s *WheelServiceImpl) Spin(ctx context.Context, userID primitive.ObjectID) (*models.WheelOutcome, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !user.LastWheelSpin.IsZero() {
		if elapsed := now.Sub(user.LastWheelSpin); elapsed < s.cooldown {
			return nil, fmt.Errorf("next spin in %s: %w", (s.cooldown - elapsed).Round(time.Second), apperrors.ErrCooldownActive)
		}
	}

	s.mu.Lock()
	outcome := pickOutcome(s.outcomes, s.rng.Float64())
	s.mu.Unlock()

	reward := repositories.WheelReward{Experience: spinExperience}
	switch outcome.Type {
	case models.WheelRewardEntries:
		reward.Entries = outcome.Entries
	case models.WheelRewardCash:
		reward.Cash = outcome.Cash
	}

	// Conditional on the lastWheelSpin value read above: a concurrent spin
	// that landed first makes this fail with ErrCooldownActive.
	if err := s.userRepo.ApplyWheelSpin(ctx, userID, user.LastWheelSpin, now, reward); err != nil {
		return nil, err
	}
	metrics.WheelSpins.WithLabelValues(outcome.Label).Inc()

	if reward.Entries > 0 {
		// Wheel winnings are lifetime earnings like any other credit; the
		// balance moved inside ApplyWheelSpin, this is the audit record.
		tx := &models.EntryTransaction{
			UserID:    userID,
			Type:      models.TransactionCredit,
			Amount:    reward.Entries,
			Source:    models.SourceWheel,
			Reference: outcome.Label,
			CreatedAt: now,
		}
		if err := s.txRepo.Create(ctx, tx); err != nil {
			slog.Error("Failed to record wheel credit", "error", err, "userId", userID)
		}
	}

	if s.achievements != nil {
		if err := s.achievements.SyncUser(ctx, userID); err != nil {
			slog.Warn("Achievement sync after spin failed", "error", err, "userId", userID)
		}
	}

	slog.Info("Wheel spin", "userId", userID, "outcome", outcome.Label)
	return &outcome, nil
}

// pickOutcome maps a uniform r in [0,1) onto the cumulative probability
// ranges of the outcome table. Rounding drift in the configured probabilities
// falls through to the last outcome.
func pickOutcome(outcomes []models.WheelOutcome, r float64) models.WheelOutcome {
	var cumulative float64
	for _, o := range outcomes {
		cumulative += o.Probability
		if r < cumulative {
			return o
		}
	}
	return outcomes[len(outcomes)-1]
}
