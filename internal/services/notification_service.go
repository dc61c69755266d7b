package services

import (
	"context"
	"fmt"

	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"github.com/ryobiguy/prize-platform/pkg/mailer"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService tells winners they have won. It is an external
// collaborator from the draw engine's point of view: failures are reported
// to the caller but must never unwind a committed draw.
type NotificationService interface {
	NotifyWinner(ctx context.Context, userID primitive.ObjectID, prize *models.Prize) error
}

var _ NotificationService = (*EmailNotificationService)(nil)

// EmailNotificationService delivers winner notifications by email
type EmailNotificationService struct {
	userRepo repositories.UserRepository
	mailer   mailer.Mailer
}

// NewEmailNotificationService creates a new EmailNotificationService
func NewEmailNotificationService(userRepo repositories.UserRepository, m mailer.Mailer) *EmailNotificationService {
	return &EmailNotificationService{userRepo: userRepo, mailer: m}
}

// NotifyWinner emails the winner about their prize
func (s *EmailNotificationService) NotifyWinner(ctx context.Context, userID primitive.ObjectID, prize *models.Prize) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load winner %s: %w", userID.Hex(), err)
	}

	subject := fmt.Sprintf("You won: %s", prize.Title)
	body := fmt.Sprintf(
		"Congratulations %s!\n\nYou have been drawn as a winner of %q (%.2f %s).\nLog in to claim your prize.\n",
		user.Username, prize.Title, prize.Value, prize.Currency,
	)
	return s.mailer.Send(user.Email, subject, body)
}
