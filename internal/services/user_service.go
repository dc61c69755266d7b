package services

import (
	"context"

	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard aggregates what the user landing page needs in one read
type Dashboard struct {
	User               *models.User               `json:"user"`
	NextLevelAt        int64                      `json:"nextLevelAt"`
	RecentTransactions []*models.EntryTransaction `json:"recentTransactions"`
	ActivePrizeCount   int                        `json:"activePrizeCount"`
}

// UserService handles user read operations
type UserService struct {
	userRepo  repositories.UserRepository
	prizeRepo repositories.PrizeRepository
	ledger    LedgerService
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, prizeRepo repositories.PrizeRepository, ledger LedgerService) *UserService {
	return &UserService{userRepo: userRepo, prizeRepo: prizeRepo, ledger: ledger}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// GetAllUsers retrieves all users
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.FindAll(ctx)
}

// GetUserCount returns the number of registered users
func (s *UserService) GetUserCount(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// GetTransactions returns a page of the user's ledger history
func (s *UserService) GetTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error) {
	return s.ledger.Transactions(ctx, userID, page, limit)
}

// GetDashboard builds the dashboard aggregate for a user
func (s *UserService) GetDashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ledger.Transactions(ctx, userID, 1, 10)
	if err != nil {
		return nil, err
	}
	active, err := s.prizeRepo.FindByStatus(ctx, []models.PrizeStatus{models.PrizeStatusActive})
	if err != nil {
		return nil, err
	}

	// XP needed for the next level: level = floor(sqrt(xp/100)) + 1, so the
	// next level starts at 100 * level^2.
	nextLevelAt := int64(100 * user.Level * user.Level)

	return &Dashboard{
		User:               user,
		NextLevelAt:        nextLevelAt,
		RecentTransactions: recent,
		ActivePrizeCount:   len(active),
	}, nil
}
