package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/controllers"
	"github.com/goldsip/goldsip_backend/middleware"
)

// RegisterAdminRoutes sets up the admin dashboard routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client,
	registrationController *controllers.RegistrationController,
	paymentController *controllers.PaymentController,
	withdrawalController *controllers.WithdrawalController,
	levelConfigController *controllers.LevelConfigController) {

	authController := controllers.NewAuthController(db)

	admin := e.Group("/api/admin")

	// Public routes (no auth required)
	admin.POST("/login", authController.AdminLogin)

	// Protected routes (require admin authentication)
	protected := admin.Group("")
	protected.Use(middleware.JWTMiddleware())
	protected.Use(middleware.RequireAdmin)

	// Withdrawal processing
	protected.GET("/withdrawals", withdrawalController.ListWithdrawals)
	protected.GET("/withdrawals/:id", withdrawalController.GetWithdrawal)
	protected.PUT("/withdrawals/:id/approve", withdrawalController.ApproveWithdrawal)
	protected.PUT("/withdrawals/:id/reject", withdrawalController.RejectWithdrawal)
	protected.PUT("/withdrawals/:id/complete", withdrawalController.CompleteWithdrawal)

	// Commission curve management
	protected.GET("/level-configs", levelConfigController.ListLevelConfigs)
	protected.PUT("/level-configs", levelConfigController.UpsertLevelConfig)
	protected.POST("/plans", levelConfigController.CreatePlan)
	protected.PUT("/plans/:planId/curve", levelConfigController.SetPlanCurve)

	// Repair operations
	protected.POST("/referrals/:userId/rebuild", registrationController.RebuildAncestry)
	protected.POST("/payments/:paymentId/redistribute", paymentController.Redistribute)
}
