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

// PrizeService handles prize CRUD, entry commitment and cancellation
type PrizeService interface {
	CreatePrize(ctx context.Context, prize *models.Prize) error
	UpdatePrize(ctx context.Context, prize *models.Prize) error
	GetPrize(ctx context.Context, id primitive.ObjectID) (*models.Prize, error)
	ListPrizes(ctx context.Context, statuses []models.PrizeStatus) ([]*models.Prize, error)
	// EnterPrize commits entriesToCommit of the user's available entries to
	// the prize. The ledger debit and the prize-side commitment are each
	// atomic; a failed commitment refunds the debit.
	EnterPrize(ctx context.Context, userID primitive.ObjectID, prizeID primitive.ObjectID, entriesToCommit int64) error
	// CancelPrize refunds every participant's committed entries and moves the
	// prize to the terminal cancelled status.
	CancelPrize(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error)
	// RecomputeStatus derives the lifecycle status from the prize dates and
	// persists it when it changed. Idempotent and side-effect-free beyond the
	// status field itself.
	RecomputeStatus(ctx context.Context, prize *models.Prize, now time.Time) models.PrizeStatus
}

// Compile-time check to ensure PrizeServiceImpl implements PrizeService
var _ PrizeService = (*PrizeServiceImpl)(nil)

// PrizeServiceImpl implements PrizeService
type PrizeServiceImpl struct {
	prizeRepo repositories.PrizeRepository
	userRepo  repositories.UserRepository
	ledger    LedgerService
}

// NewPrizeService creates a new PrizeServiceImpl
func NewPrizeService(prizeRepo repositories.PrizeRepository, userRepo repositories.UserRepository, ledger LedgerService) *PrizeServiceImpl {
	return &PrizeServiceImpl{prizeRepo: prizeRepo, userRepo: userRepo, ledger: ledger}
}

// CreatePrize validates and stores a new prize
func (s *PrizeServiceImpl) CreatePrize(ctx context.Context, prize *models.Prize) error {
	if prize.TotalWinners < 1 {
		prize.TotalWinners = 1
	}
	// MaxEntriesPerUser <= 0 means no per-user cap
	if !prize.EndDate.After(prize.StartDate) {
		return apperrors.ErrInvalidDates
	}
	prize.Status = prize.ComputeStatus(time.Now())
	prize.Participants = nil
	prize.TotalEntries = 0
	prize.Winners = nil
	if err := s.prizeRepo.Create(ctx, prize); err != nil {
		return fmt.Errorf("failed to create prize: %w", err)
	}
	slog.Info("Prize created", "prizeId", prize.ID, "title", prize.Title, "endDate", prize.EndDate)
	return nil
}

// UpdatePrize applies admin edits to a non-terminal prize
func (s *PrizeServiceImpl) UpdatePrize(ctx context.Context, prize *models.Prize) error {
	existing, err := s.prizeRepo.FindByID(ctx, prize.ID)
	if err != nil {
		return err
	}
	if existing.Status.Terminal() {
		return fmt.Errorf("cannot update a %s prize", existing.Status)
	}
	// Participant and winner state is owned by the commit/draw paths
	prize.Participants = existing.Participants
	prize.TotalEntries = existing.TotalEntries
	prize.Winners = existing.Winners
	prize.Status = existing.Status
	return s.prizeRepo.Update(ctx, prize)
}

// GetPrize loads a prize and refreshes its derived status
func (s *PrizeServiceImpl) GetPrize(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	prize, err := s.prizeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.RecomputeStatus(ctx, prize, time.Now())
	return prize, nil
}

// ListPrizes lists prizes, optionally filtered by status, refreshing derived
// statuses on the way out
func (s *PrizeServiceImpl) ListPrizes(ctx context.Context, statuses []models.PrizeStatus) ([]*models.Prize, error) {
	var prizes []*models.Prize
	var err error
	if len(statuses) == 0 {
		prizes, err = s.prizeRepo.FindAll(ctx)
	} else {
		prizes, err = s.prizeRepo.FindByStatus(ctx, statuses)
	}
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, p := range prizes {
		s.RecomputeStatus(ctx, p, now)
	}
	return prizes, nil
}

// EnterPrize commits entries to a prize.
//
// Order matters: the ledger debit happens first and the prize-side commitment
// second, with a compensating refund if the commitment is rejected. Both
// sides are single-document atomic updates, so no interleaving can create
// entries out of thin air; the worst crash outcome is a debited balance with
// no commitment, which the refund path and the audit trail make visible.
func (s *PrizeServiceImpl) EnterPrize(ctx context.Context, userID, prizeID primitive.ObjectID, entriesToCommit int64) error {
	if entriesToCommit <= 0 {
		return fmt.Errorf("entries to commit must be positive")
	}
	prize, err := s.prizeRepo.FindByID(ctx, prizeID)
	if err != nil {
		return err
	}
	now := time.Now()
	if s.RecomputeStatus(ctx, prize, now) != models.PrizeStatusActive {
		return fmt.Errorf("prize %s is %s: %w", prizeID.Hex(), prize.Status, apperrors.ErrPrizeNotActive)
	}
	if prize.MaxEntriesPerUser > 0 && prize.EntriesFor(userID)+entriesToCommit > prize.MaxEntriesPerUser {
		return fmt.Errorf("limit is %d entries per user: %w", prize.MaxEntriesPerUser, apperrors.ErrMaxEntriesExceeded)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.ledger.Debit(ctx, userID, entriesToCommit, models.SourcePrizeEntry, prizeID.Hex()); err != nil {
		return err
	}
	if err := s.prizeRepo.CommitEntries(ctx, prizeID, userID, user.Username, entriesToCommit, prize.MaxEntriesPerUser); err != nil {
		if refundErr := s.ledger.Refund(ctx, userID, entriesToCommit, models.SourcePrizeRefund, prizeID.Hex()); refundErr != nil {
			slog.Error("CRITICAL: failed to refund after rejected commitment", "error", refundErr, "userId", userID, "prizeId", prizeID, "amount", entriesToCommit)
		}
		return err
	}

	entry := models.PrizeEntry{PrizeID: prizeID, EntriesUsed: entriesToCommit, EnteredAt: now}
	if err := s.userRepo.AppendPrizeEntry(ctx, userID, entry); err != nil {
		slog.Error("Failed to append prize entry log", "error", err, "userId", userID, "prizeId", prizeID)
	}
	slog.Info("Entries committed", "userId", userID, "prizeId", prizeID, "entries", entriesToCommit)
	return nil
}

// CancelPrize refunds all participants and cancels the prize. The same
// conditional claim the draw engine uses guards it, so cancellation can never
// race a draw and a drawn prize can never be cancelled.
func (s *PrizeServiceImpl) CancelPrize(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error) {
	prize, err := s.prizeRepo.ClaimForDraw(ctx, prizeID)
	if err != nil {
		return nil, err
	}

	for _, p := range prize.Participants {
		if p.Entries <= 0 {
			continue
		}
		if err := s.ledger.Refund(ctx, p.UserID, p.Entries, models.SourcePrizeRefund, prizeID.Hex()); err != nil {
			// Keep refunding the rest; the audit trail identifies the gap
			slog.Error("Failed to refund participant on cancellation", "error", err, "userId", p.UserID, "prizeId", prizeID, "entries", p.Entries)
		}
	}

	if err := s.prizeRepo.SetStatus(ctx, prizeID, models.PrizeStatusDrawing, models.PrizeStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to mark prize cancelled: %w", err)
	}
	prize.Status = models.PrizeStatusCancelled
	slog.Info("Prize cancelled and refunded", "prizeId", prizeID, "participants", len(prize.Participants), "totalEntries", prize.TotalEntries)
	return prize, nil
}

// RecomputeStatus persists the derived status when it changed
func (s *PrizeServiceImpl) RecomputeStatus(ctx context.Context, prize *models.Prize, now time.Time) models.PrizeStatus {
	computed := prize.ComputeStatus(now)
	if computed == prize.Status {
		return computed
	}
	if err := s.prizeRepo.SetStatus(ctx, prize.ID, prize.Status, computed); err != nil {
		slog.Warn("Failed to persist recomputed prize status", "error", err, "prizeId", prize.ID, "from", prize.Status, "to", computed)
		return prize.Status
	}
	prize.Status = computed
	return computed
}
