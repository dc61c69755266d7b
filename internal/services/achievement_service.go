package services

import (
	"context"
	"time"

	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// AchievementService derives unlocked achievements and the login streak from
// a user's cumulative stats
type AchievementService interface {
	Catalogue() []models.Achievement
	// SyncUser unlocks every achievement whose stat threshold the user has
	// reached. Unlocks are idempotent; each grants its bonus entries through
	// the ledger exactly once.
	SyncUser(ctx context.Context, userID primitive.ObjectID) error
	// UpdateLoginStreak advances the consecutive-day login streak: unchanged
	// on a same-day login, +1 on the next calendar day, reset to 1 after a
	// gap.
	UpdateLoginStreak(ctx context.Context, userID primitive.ObjectID, now time.Time) (models.Streak, error)
}

// Compile-time check to ensure AchievementServiceImpl implements AchievementService
var _ AchievementService = (*AchievementServiceImpl)(nil)

// AchievementServiceImpl implements AchievementService over the fixed catalogue
type AchievementServiceImpl struct {
	userRepo  repositories.UserRepository
	ledger    LedgerService
	catalogue []models.Achievement
}

// NewAchievementService creates a new AchievementServiceImpl
func NewAchievementService(userRepo repositories.UserRepository, ledger LedgerService) *AchievementServiceImpl {
	return &AchievementServiceImpl{
		userRepo:  userRepo,
		ledger:    ledger,
		catalogue: models.AchievementCatalogue,
	}
}

// Catalogue returns the achievement definitions
func (s *AchievementServiceImpl) Catalogue() []models.Achievement {
	out := make([]models.Achievement, len(s.catalogue))
	copy(out, s.catalogue)
	return out
}

// SyncUser checks every catalogue entry against the user's stats
func (s *AchievementServiceImpl) SyncUser(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	unlocked := make(map[string]bool, len(user.Achievements))
	for _, id := range user.Achievements {
		unlocked[id] = true
	}

	for _, a := range s.catalogue {
		if unlocked[a.ID] || statValue(user, a.Stat) < a.Threshold {
			continue
		}
		added, err := s.userRepo.AddAchievement(ctx, userID, a.ID)
		if err != nil {
			return err
		}
		if !added {
			// Lost a race with a concurrent sync; the other one pays out
			continue
		}
		slog.Info("Achievement unlocked", "userId", userID, "achievement", a.ID)
		if a.BonusEntries > 0 {
			if err := s.ledger.Credit(ctx, userID, a.BonusEntries, models.SourceAchievement, a.ID); err != nil {
				slog.Error("Failed to credit achievement bonus", "error", err, "userId", userID, "achievement", a.ID)
			}
		}
		if a.Experience > 0 {
			if _, err := s.userRepo.AddExperience(ctx, userID, a.Experience); err != nil {
				slog.Error("Failed to grant achievement experience", "error", err, "userId", userID, "achievement", a.ID)
			}
		}
	}
	return nil
}

// UpdateLoginStreak advances the streak for a login happening at now
func (s *AchievementServiceImpl) UpdateLoginStreak(ctx context.Context, userID primitive.ObjectID, now time.Time) (models.Streak, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return models.Streak{}, err
	}

	streak := user.Streak
	switch daysBetween(streak.LastLoginDate, now) {
	case 0:
		if !streak.LastLoginDate.IsZero() {
			return streak, nil // same calendar day, nothing to do
		}
		streak.Current = 1
	case 1:
		streak.Current++
	default:
		streak.Current = 1
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastLoginDate = now

	if err := s.userRepo.SetStreak(ctx, userID, streak); err != nil {
		return models.Streak{}, err
	}
	if err := s.SyncUser(ctx, userID); err != nil {
		slog.Warn("Achievement sync after streak update failed", "error", err, "userId", userID)
	}
	return streak, nil
}

func statValue(user *models.User, key models.StatKey) int64 {
	switch key {
	case models.StatAdsWatched:
		return user.Stats.AdsWatched
	case models.StatSurveysCompleted:
		return user.Stats.SurveysCompleted
	case models.StatTasksCompleted:
		return user.Stats.TasksCompleted
	case models.StatReferralsMade:
		return user.Stats.ReferralsMade
	case models.StatPrizesWon:
		return user.Stats.PrizesWon
	case models.StatTotalEntriesEarned:
		return user.Stats.TotalEntriesEarned
	case models.StatWheelSpins:
		return user.Stats.WheelSpins
	case models.StatInstantWins:
		return user.Stats.InstantWins
	case models.StatLongestStreak:
		return int64(user.Streak.Longest)
	default:
		return 0
	}
}

// daysBetween counts whole calendar days from a to b in b's location
func daysBetween(a, b time.Time) int {
	if a.IsZero() {
		return 0
	}
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, b.Location())
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bDay.Sub(aDay) / (24 * time.Hour))
}
