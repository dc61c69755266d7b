package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryobiguy/prize-platform/internal/config"
	"github.com/ryobiguy/prize-platform/internal/handlers"
	"github.com/ryobiguy/prize-platform/internal/middleware"
)

// Handlers bundles the constructed handlers for route registration
type Handlers struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Prize  *handlers.PrizeHandler
	Draw   *handlers.DrawHandler
	Wheel  *handlers.WheelHandler
	Reward *handlers.RewardHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))

		auth := public.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// Prize listings are browsable without an account
		public.GET("/prizes", h.Prize.ListPrizes)
		public.GET("/prizes/:id", h.Prize.GetPrize)
		public.GET("/prizes/:id/winners", h.Draw.GetWinners)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", h.User.GetMe)
			users.GET("/me/dashboard", h.User.GetDashboard)
			users.GET("/me/transactions", h.User.GetTransactions)
		}

		protected.POST("/prizes/:id/enter", h.Prize.EnterPrize)

		wheel := protected.Group("/wheel")
		{
			wheel.GET("", h.Wheel.GetWheel)
			wheel.POST("/spin", h.Wheel.Spin)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", h.Reward.ListTasks)
			tasks.POST("/:id/complete", h.Reward.CompleteTask)
		}

		protected.POST("/rewards/daily", h.Reward.ClaimDailyBonus)
		protected.POST("/referrals/redeem", h.Reward.RedeemReferral)
	}

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg), middleware.AdminOnlyMiddleware())
	{
		prizes := admin.Group("/prizes")
		{
			prizes.POST("", h.Prize.CreatePrize)
			prizes.PUT("/:id", h.Prize.UpdatePrize)
			prizes.POST("/:id/cancel", h.Prize.CancelPrize)
			prizes.POST("/:id/draw", h.Draw.ExecuteDraw)
		}

		users := admin.Group("/users")
		{
			users.GET("", h.User.GetAllUsers)
			users.GET("/:id", h.User.GetUserByID)
			users.POST("/:id/credit", h.Reward.CreditPurchase)
		}

		admin.POST("/tasks", h.Reward.CreateTask)
	}

	return router
}
