package repositories

import (
	"context"
	"time"

	"github.com/ryobiguy/prize-platform/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WheelReward is the balance/stat delta one wheel spin applies. It is applied
// atomically together with the lastWheelSpin refresh.
type WheelReward struct {
	Entries    int64
	Cash       float64
	Experience int64
}

// UserRepository defines the interface for user data operations.
// Balance and counter mutations are atomic at the storage layer; callers must
// not read-modify-write balances through Update.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)

	// CreditEntries atomically increments availableEntries; when lifetime is
	// true it also increments totalEntries and stats.totalEntriesEarned.
	CreditEntries(ctx context.Context, id primitive.ObjectID, amount int64, lifetime bool) error
	// DebitEntries atomically decrements availableEntries, failing with
	// apperrors.ErrInsufficientBalance when the balance would go negative.
	DebitEntries(ctx context.Context, id primitive.ObjectID, amount int64) error
	CreditCash(ctx context.Context, id primitive.ObjectID, amount float64) error

	AppendPrizeEntry(ctx context.Context, id primitive.ObjectID, entry models.PrizeEntry) error
	AppendWin(ctx context.Context, id primitive.ObjectID, win models.Win) error
	IncrementStat(ctx context.Context, id primitive.ObjectID, stat models.StatKey, by int64) error
	AddExperience(ctx context.Context, id primitive.ObjectID, xp int64) (*models.User, error)
	// AddAchievement adds the achievement id if absent; reports whether it was
	// newly added (the unlock is idempotent).
	AddAchievement(ctx context.Context, id primitive.ObjectID, achievementID string) (bool, error)
	SetStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error
	SetReferredBy(ctx context.Context, id primitive.ObjectID, referrer primitive.ObjectID) (bool, error)
	// ClaimDailyBonus conditionally stamps lastDailyBonus for the day of now,
	// failing with apperrors.ErrDailyLimitReached when already claimed that
	// calendar day. Two racing claims cannot both land.
	ClaimDailyBonus(ctx context.Context, id primitive.ObjectID, now time.Time) error

	// ApplyWheelSpin refreshes lastWheelSpin and applies the reward in one
	// conditional update keyed on the pre-spin lastWheelSpin value, so two
	// racing spins cannot both land.
	ApplyWheelSpin(ctx context.Context, id primitive.ObjectID, prevSpin, now time.Time, reward WheelReward) error
}

// PrizeRepository defines the interface for prize data operations
type PrizeRepository interface {
	Create(ctx context.Context, prize *models.Prize) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error)
	FindAll(ctx context.Context) ([]*models.Prize, error)
	FindByStatus(ctx context.Context, statuses []models.PrizeStatus) ([]*models.Prize, error)
	// FindEndedUndrawn returns prizes whose end date has passed, with no
	// winners yet and not in a terminal state.
	FindEndedUndrawn(ctx context.Context, now time.Time) ([]*models.Prize, error)
	FindNonTerminal(ctx context.Context) ([]*models.Prize, error)
	Update(ctx context.Context, prize *models.Prize) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// CommitEntries atomically adds n entries for the user on an active prize,
	// honouring maxPerUser. It creates the participant row on first entry.
	CommitEntries(ctx context.Context, prizeID primitive.ObjectID, userID primitive.ObjectID, username string, n, maxPerUser int64) error
	// ClaimForDraw conditionally moves the prize into the transient drawing
	// status; it fails with apperrors.ErrAlreadyDrawn when winners already
	// exist or another draw holds the prize.
	ClaimForDraw(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error)
	SetWinners(ctx context.Context, prizeID primitive.ObjectID, winners []models.PrizeWinner) error
	SetStatus(ctx context.Context, prizeID primitive.ObjectID, from, to models.PrizeStatus) error
	MarkWinnerNotified(ctx context.Context, prizeID, userID primitive.ObjectID) error
}

// EntryTransactionRepository defines the interface for ledger audit records
type EntryTransactionRepository interface {
	Create(ctx context.Context, tx *models.EntryTransaction) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error)
}

// TaskRepository defines the interface for task definitions
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindActive(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
}

// TaskCompletionRepository defines the interface for completion records
type TaskCompletionRepository interface {
	Create(ctx context.Context, completion *models.TaskCompletion) error
	HasCompleted(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error)
	CountByTypeSince(ctx context.Context, userID primitive.ObjectID, taskType models.TaskType, since time.Time) (int64, error)
}
