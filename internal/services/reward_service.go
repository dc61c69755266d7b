package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// RewardRules are the tunable amounts for the earning sources
type RewardRules struct {
	ReferralBonus       int64 // credited to the referrer
	RefereeBonus        int64 // credited to the new user on redeem
	DailyBonusBase      int64
	DailyBonusPerStreak int64 // extra entries per day of current streak
	DailyBonusMax       int64
	DailyAdLimit        int64
	TaskExperience      int64
	SurveyExperience    int64
	AdExperience        int64
}

// RewardService is the umbrella for the independent earning sources: tasks,
// ads, surveys, referrals, daily bonus and purchase credits. Each source
// computes its amount, enforces its own idempotency rule and feeds the Ledger.
type RewardService interface {
	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	// CompleteTask verifies and credits one task completion. Non-repeatable
	// tasks can be completed once per user ever; ad-watch tasks are further
	// capped per calendar day.
	CompleteTask(ctx context.Context, userID, taskID primitive.ObjectID, proof string) (int64, error)
	// RedeemReferral links the user to the owner of the code and credits both
	// sides, once per user ever.
	RedeemReferral(ctx context.Context, userID primitive.ObjectID, code string) error
	// ClaimDailyBonus advances the login streak and pays the streak-scaled
	// daily bonus, once per calendar day.
	ClaimDailyBonus(ctx context.Context, userID primitive.ObjectID) (int64, models.Streak, error)
	// CreditPurchase credits entries bought through a payment provider. The
	// provider's success callback is trusted to have verified payment.
	CreditPurchase(ctx context.Context, userID primitive.ObjectID, entries int64, reference string) error
}

// Compile-time check to ensure RewardServiceImpl implements RewardService
var _ RewardService = (*RewardServiceImpl)(nil)

// RewardServiceImpl implements RewardService
type RewardServiceImpl struct {
	userRepo       repositories.UserRepository
	taskRepo       repositories.TaskRepository
	completionRepo repositories.TaskCompletionRepository
	ledger         LedgerService
	achievements   AchievementService
	rules          RewardRules
}

// NewRewardService creates a new RewardServiceImpl
func NewRewardService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	completionRepo repositories.TaskCompletionRepository,
	ledger LedgerService,
	achievements AchievementService,
	rules RewardRules,
) *RewardServiceImpl {
	return &RewardServiceImpl{
		userRepo:       userRepo,
		taskRepo:       taskRepo,
		completionRepo: completionRepo,
		ledger:         ledger,
		achievements:   achievements,
		rules:          rules,
	}
}

// ListTasks returns the active tasks
func (s *RewardServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	return s.taskRepo.FindActive(ctx)
}

// CreateTask stores an admin-defined task
func (s *RewardServiceImpl) CreateTask(ctx context.Context, task *models.Task) error {
	if task.Reward <= 0 {
		return fmt.Errorf("task reward must be positive")
	}
	task.Verification.Type = task.Type
	return s.taskRepo.Create(ctx, task)
}

// CompleteTask verifies and credits a task completion
func (s *RewardServiceImpl) CompleteTask(ctx context.Context, userID, taskID primitive.ObjectID, proof string) (int64, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if !task.Active {
		return 0, apperrors.ErrTaskNotFound
	}

	if !task.Repeatable {
		done, err := s.completionRepo.HasCompleted(ctx, userID, taskID)
		if err != nil {
			return 0, err
		}
		if done {
			return 0, apperrors.ErrAlreadyCompleted
		}
	}

	if task.Type == models.TaskTypeAdWatch && s.rules.DailyAdLimit > 0 {
		startOfDay := beginningOfDay(time.Now())
		count, err := s.completionRepo.CountByTypeSince(ctx, userID, models.TaskTypeAdWatch, startOfDay)
		if err != nil {
			return 0, err
		}
		if count >= s.rules.DailyAdLimit {
			return 0, fmt.Errorf("watched %d ads today: %w", count, apperrors.ErrDailyLimitReached)
		}
	}

	if task.Type == models.TaskTypeSurvey && task.Verification.CompletionCode != "" {
		if proof != task.Verification.CompletionCode {
			return 0, fmt.Errorf("survey completion code mismatch: %w", apperrors.ErrInvalidProof)
		}
	}

	completion := &models.TaskCompletion{
		UserID:      userID,
		TaskID:      taskID,
		TaskType:    task.Type,
		Repeatable:  task.Repeatable,
		Reward:      task.Reward,
		CompletedAt: time.Now(),
	}
	if err := s.completionRepo.Create(ctx, completion); err != nil {
		return 0, err
	}

	source := models.SourceTask
	stat := models.StatTasksCompleted
	xp := s.rules.TaskExperience
	switch task.Type {
	case models.TaskTypeAdWatch:
		source, stat, xp = models.SourceAd, models.StatAdsWatched, s.rules.AdExperience
	case models.TaskTypeSurvey:
		source, stat, xp = models.SourceSurvey, models.StatSurveysCompleted, s.rules.SurveyExperience
	}

	if err := s.ledger.Credit(ctx, userID, task.Reward, source, taskID.Hex()); err != nil {
		return 0, err
	}
	if err := s.userRepo.IncrementStat(ctx, userID, stat, 1); err != nil {
		slog.Error("Failed to bump task stat", "error", err, "userId", userID, "stat", stat)
	}
	if xp > 0 {
		if _, err := s.userRepo.AddExperience(ctx, userID, xp); err != nil {
			slog.Error("Failed to grant task experience", "error", err, "userId", userID)
		}
	}
	if err := s.achievements.SyncUser(ctx, userID); err != nil {
		slog.Warn("Achievement sync after task failed", "error", err, "userId", userID)
	}

	slog.Info("Task completed", "userId", userID, "taskId", taskID, "type", task.Type, "reward", task.Reward)
	return task.Reward, nil
}

// RedeemReferral credits both sides of a referral, once per user
func (s *RewardServiceImpl) RedeemReferral(ctx context.Context, userID primitive.ObjectID, code string) error {
	referrer, err := s.userRepo.FindByReferralCode(ctx, code)
	if err != nil {
		if err == apperrors.ErrUserNotFound {
			return apperrors.ErrReferralNotFound
		}
		return err
	}
	if referrer.ID == userID {
		return apperrors.ErrOwnReferralCode
	}

	linked, err := s.userRepo.SetReferredBy(ctx, userID, referrer.ID)
	if err != nil {
		return err
	}
	if !linked {
		return apperrors.ErrAlreadyReferred
	}

	if err := s.ledger.Credit(ctx, referrer.ID, s.rules.ReferralBonus, models.SourceReferral, userID.Hex()); err != nil {
		slog.Error("Failed to credit referrer", "error", err, "referrerId", referrer.ID)
	}
	if err := s.userRepo.IncrementStat(ctx, referrer.ID, models.StatReferralsMade, 1); err != nil {
		slog.Error("Failed to bump referralsMade", "error", err, "referrerId", referrer.ID)
	}
	if err := s.ledger.Credit(ctx, userID, s.rules.RefereeBonus, models.SourceReferral, referrer.ID.Hex()); err != nil {
		slog.Error("Failed to credit referee", "error", err, "userId", userID)
	}

	if err := s.achievements.SyncUser(ctx, referrer.ID); err != nil {
		slog.Warn("Achievement sync for referrer failed", "error", err, "referrerId", referrer.ID)
	}
	slog.Info("Referral redeemed", "userId", userID, "referrerId", referrer.ID)
	return nil
}

// ClaimDailyBonus pays the streak-scaled daily login bonus. The claim date is
// tracked separately from the login streak, so logging in earlier the same day
// does not consume the bonus.
func (s *RewardServiceImpl) ClaimDailyBonus(ctx context.Context, userID primitive.ObjectID) (int64, models.Streak, error) {
	now := time.Now()
	if err := s.userRepo.ClaimDailyBonus(ctx, userID, now); err != nil {
		return 0, models.Streak{}, err
	}

	streak, err := s.achievements.UpdateLoginStreak(ctx, userID, now)
	if err != nil {
		return 0, models.Streak{}, err
	}

	bonus := s.rules.DailyBonusBase + int64(streak.Current-1)*s.rules.DailyBonusPerStreak
	if s.rules.DailyBonusMax > 0 && bonus > s.rules.DailyBonusMax {
		bonus = s.rules.DailyBonusMax
	}
	if err := s.ledger.Credit(ctx, userID, bonus, models.SourceDailyBonus, ""); err != nil {
		return 0, streak, err
	}
	slog.Info("Daily bonus claimed", "userId", userID, "bonus", bonus, "streak", streak.Current)
	return bonus, streak, nil
}

// CreditPurchase credits purchased entries
func (s *RewardServiceImpl) CreditPurchase(ctx context.Context, userID primitive.ObjectID, entries int64, reference string) error {
	if entries <= 0 {
		return fmt.Errorf("purchased entries must be positive")
	}
	if err := s.ledger.Credit(ctx, userID, entries, models.SourcePurchase, reference); err != nil {
		return err
	}
	if err := s.achievements.SyncUser(ctx, userID); err != nil {
		slog.Warn("Achievement sync after purchase failed", "error", err, "userId", userID)
	}
	return nil
}

func beginningOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
