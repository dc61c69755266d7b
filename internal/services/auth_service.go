package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"github.com/ryobiguy/prize-platform/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// RegisterRequest carries the registration payload
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,min=3,max=32"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referralCode"`
}

// LoginRequest carries the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthService handles registration and login
type AuthService interface {
	// Register creates the user, assigns a referral code, seeds the welcome
	// bonus and redeems an optional referral code.
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	// Login verifies credentials, advances the login streak and returns a JWT.
	Login(ctx context.Context, req *LoginRequest) (string, *models.User, error)
}

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl implements AuthService
type AuthServiceImpl struct {
	userRepo     repositories.UserRepository
	ledger       LedgerService
	rewards      RewardService
	achievements AchievementService
	jwtSecret    string
	jwtExpiry    time.Duration
	welcomeBonus int64
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(
	userRepo repositories.UserRepository,
	ledger LedgerService,
	rewards RewardService,
	achievements AchievementService,
	jwtSecret string,
	jwtExpiry time.Duration,
	welcomeBonus int64,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:     userRepo,
		ledger:       ledger,
		rewards:      rewards,
		achievements: achievements,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		welcomeBonus: welcomeBonus,
	}
}

// Register creates a new user account
func (s *AuthServiceImpl) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrDuplicateUser
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.ErrDuplicateUser
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashed),
		Level:        1,
		ReferralCode: utils.NewReferralCode(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.welcomeBonus > 0 {
		if err := s.ledger.Credit(ctx, user.ID, s.welcomeBonus, models.SourceWelcome, ""); err != nil {
			slog.Error("Failed to credit welcome bonus", "error", err, "userId", user.ID)
		}
	}

	if req.ReferralCode != "" {
		if err := s.rewards.RedeemReferral(ctx, user.ID, req.ReferralCode); err != nil {
			// Registration stands even when the code is bad
			slog.Warn("Referral redemption at signup failed", "error", err, "userId", user.ID, "code", req.ReferralCode)
		}
	}

	slog.Info("User registered", "userId", user.ID, "username", user.Username)
	return s.userRepo.FindByID(ctx, user.ID)
}

// Login verifies credentials and issues a token
func (s *AuthServiceImpl) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if _, err := s.achievements.UpdateLoginStreak(ctx, user.ID, time.Now()); err != nil {
		slog.Warn("Failed to update login streak", "error", err, "userId", user.ID)
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.IsAdmin, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}
