package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ryobiguy/prize-platform/internal/metrics"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// LedgerService is the single owner of the entries counters. No other
// component mutates totalEntries/availableEntries.
type LedgerService interface {
	// Credit grants newly earned entries: availableEntries and the lifetime
	// totalEntries both increase.
	Credit(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error
	// Debit spends available entries, failing with ErrInsufficientBalance
	// rather than ever letting the balance go negative.
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error
	// Refund returns previously spent entries. It increases availableEntries
	// only: refunds never count toward totalEntries or the earned stat, so
	// achievements cannot be farmed by enter/refund cycles.
	Refund(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error
	Transactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error)
}

// Compile-time check to ensure LedgerServiceImpl implements LedgerService
var _ LedgerService = (*LedgerServiceImpl)(nil)

// LedgerServiceImpl implements LedgerService over the user repository's
// atomic balance operations, writing one audit record per mutation.
type LedgerServiceImpl struct {
	userRepo repositories.UserRepository
	txRepo   repositories.EntryTransactionRepository
}

// NewLedgerService creates a new LedgerServiceImpl
func NewLedgerService(userRepo repositories.UserRepository, txRepo repositories.EntryTransactionRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{userRepo: userRepo, txRepo: txRepo}
}

func (s *LedgerServiceImpl) Credit(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error {
	if amount <= 0 {
		return errors.New("credit amount must be positive")
	}
	if err := s.userRepo.CreditEntries(ctx, userID, amount, true); err != nil {
		return fmt.Errorf("failed to credit entries: %w", err)
	}
	metrics.EntriesCredited.WithLabelValues(string(source)).Add(float64(amount))
	s.record(ctx, userID, models.TransactionCredit, amount, source, reference)
	return nil
}

func (s *LedgerServiceImpl) Debit(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}
	if err := s.userRepo.DebitEntries(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to debit entries: %w", err)
	}
	metrics.EntriesDebited.WithLabelValues(string(source)).Add(float64(amount))
	s.record(ctx, userID, models.TransactionDebit, amount, source, reference)
	return nil
}

func (s *LedgerServiceImpl) Refund(ctx context.Context, userID primitive.ObjectID, amount int64, source models.EntrySource, reference string) error {
	if amount <= 0 {
		return errors.New("refund amount must be positive")
	}
	if err := s.userRepo.CreditEntries(ctx, userID, amount, false); err != nil {
		return fmt.Errorf("failed to refund entries: %w", err)
	}
	s.record(ctx, userID, models.TransactionRefund, amount, source, reference)
	return nil
}

func (s *LedgerServiceImpl) Transactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error) {
	return s.txRepo.FindByUserID(ctx, userID, page, limit)
}

// record writes the audit row. The balance mutation has already committed, so
// a failed audit write is logged rather than unwinding the ledger.
func (s *LedgerServiceImpl) record(ctx context.Context, userID primitive.ObjectID, txType models.TransactionType, amount int64, source models.EntrySource, reference string) {
	tx := &models.EntryTransaction{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Source:    source,
		Reference: reference,
		CreatedAt: time.Now(),
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		slog.Error("Failed to record entry transaction", "error", err, "userId", userID, "type", txType, "amount", amount, "source", source)
	}
}
