package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ryobiguy/prize-platform/api/routes"
	"github.com/ryobiguy/prize-platform/internal/config"
	"github.com/ryobiguy/prize-platform/internal/handlers"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	mongorepo "github.com/ryobiguy/prize-platform/internal/repositories/mongodb"
	"github.com/ryobiguy/prize-platform/internal/services"
	"github.com/ryobiguy/prize-platform/pkg/mailer"
	"github.com/ryobiguy/prize-platform/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongodb.EnsureIndexes(context.Background(), db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var prizeRepo repositories.PrizeRepository = mongorepo.NewPrizeRepository(db)
	var txRepo repositories.EntryTransactionRepository = mongorepo.NewEntryTransactionRepository(db)
	var taskRepo repositories.TaskRepository = mongorepo.NewTaskRepository(db)
	var completionRepo repositories.TaskCompletionRepository = mongorepo.NewTaskCompletionRepository(db)

	// Winner notifications
	var mail mailer.Mailer
	if cfg.Mail.MockMailer {
		mail = mailer.NewMockMailer()
	} else {
		mail = mailer.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	}
	notifier := services.NewEmailNotificationService(userRepo, mail)

	// Services
	ledger := services.NewLedgerService(userRepo, txRepo)
	achievements := services.NewAchievementService(userRepo, ledger)
	rewards := services.NewRewardService(userRepo, taskRepo, completionRepo, ledger, achievements, services.RewardRules{
		ReferralBonus:       cfg.Rewards.ReferralBonus,
		RefereeBonus:        cfg.Rewards.RefereeBonus,
		DailyBonusBase:      cfg.Rewards.DailyBonusBase,
		DailyBonusPerStreak: cfg.Rewards.DailyBonusPerStreak,
		DailyBonusMax:       cfg.Rewards.DailyBonusMax,
		DailyAdLimit:        cfg.Rewards.DailyAdLimit,
		TaskExperience:      cfg.Rewards.TaskExperience,
		SurveyExperience:    cfg.Rewards.SurveyExperience,
		AdExperience:        cfg.Rewards.AdExperience,
	})
	prizeService := services.NewPrizeService(prizeRepo, userRepo, ledger)
	drawService := services.NewDrawService(prizeRepo, userRepo, notifier, achievements)
	wheelService := services.NewWheelService(userRepo, txRepo, achievements, nil, time.Duration(cfg.Wheel.CooldownMinutes)*time.Minute)
	authService := services.NewAuthService(userRepo, ledger, rewards, achievements, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second, cfg.Rewards.WelcomeBonus)
	userService := services.NewUserService(userRepo, prizeRepo, ledger)

	scheduler := services.NewScheduler(
		prizeRepo,
		prizeService,
		drawService,
		time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute,
		time.Duration(cfg.Scheduler.CancelGraceHours)*time.Hour,
	)
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Handlers
	h := &routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		User:   handlers.NewUserHandler(userService),
		Prize:  handlers.NewPrizeHandler(prizeService),
		Draw:   handlers.NewDrawHandler(drawService, prizeService),
		Wheel:  handlers.NewWheelHandler(wheelService),
		Reward: handlers.NewRewardHandler(rewards),
	}

	router := routes.SetupRouter(cfg, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
