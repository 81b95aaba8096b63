package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/controllers"
	"github.com/goldsip/goldsip_backend/middleware"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/repositories"
	"github.com/goldsip/goldsip_backend/services"
	"github.com/goldsip/goldsip_backend/websocket"
)

// SetupRoutes wires the services and controllers and registers all API routes
func SetupRoutes(e *echo.Echo, db *mongo.Client, levels *services.LevelConfigService, hub *websocket.Hub) {
	userRepo := repositories.NewUserRepository(db)
	ledger := services.NewWalletLedger(db)
	tree := services.NewReferralTreeService(db)
	engine := services.NewCommissionEngine(db, levels, ledger, hub)
	payout := services.NewPayoutService()
	withdrawals := services.NewWithdrawalService(db, ledger, payout, hub)

	registrationController := controllers.NewRegistrationController(db, userRepo, tree)
	paymentController := controllers.NewPaymentController(db, engine, ledger)
	walletController := controllers.NewWalletController(db, ledger, userRepo)
	withdrawalController := controllers.NewWithdrawalController(withdrawals)
	levelConfigController := controllers.NewLevelConfigController(db, levels)

	// Public routes
	e.POST("/api/auth/register", registrationController.Register)
	e.POST("/api/payments/callback", paymentController.HandleCallback)
	e.GET("/api/plans", levelConfigController.ListPlans)

	// Protected routes group
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	r.GET("/wallet", walletController.GetWallet)
	r.GET("/wallet/commissions", walletController.GetCommissions)
	r.GET("/referrals/summary", walletController.GetReferralSummary)

	r.POST("/withdrawals", withdrawalController.RequestWithdrawal)
	r.GET("/withdrawals", withdrawalController.GetMyWithdrawals)

	// Live commission and withdrawal updates
	r.GET("/ws", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Authentication failed",
			})
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid user ID format",
			})
		}
		return websocket.HandleWebSocket(c, hub, objID)
	})

	RegisterAdminRoutes(e, db, registrationController, paymentController, withdrawalController, levelConfigController)
}
