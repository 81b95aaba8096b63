// controllers/registration_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/repositories"
	"github.com/goldsip/goldsip_backend/services"
	"github.com/goldsip/goldsip_backend/utils"
)

// RegistrationController is the boundary with the auth collaborator: it
// creates the user row and materializes the referral ancestry. Ancestry
// problems never fail a registration.
type RegistrationController struct {
	db       *mongo.Client
	userRepo *repositories.UserRepository
	tree     *services.ReferralTreeService
}

func NewRegistrationController(db *mongo.Client, userRepo *repositories.UserRepository, tree *services.ReferralTreeService) *RegistrationController {
	return &RegistrationController{db: db, userRepo: userRepo, tree: tree}
}

// Register creates a new user account and builds their referral ancestry
func (rc *RegistrationController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
			Data:    err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    req.Email,
		Password: hashedPassword,
		FullName: req.FullName,
		Phone:    req.Phone,
		UserType: "user",
		IsActive: true,
		FCMToken: req.FCMToken,
	}

	if err := rc.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
			Data:    err.Error(),
		})
	}

	// Referral is optional and must never block registration. A storage
	// failure here is retryable through the admin rebuild endpoint.
	edgesCreated, err := rc.tree.BuildAncestry(ctx, user.ID, req.ReferralCode)
	if err != nil {
		log.Printf("Ancestry build failed for user %s (retryable): %v", user.ID.Hex(), err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Registration successful",
		Data: map[string]interface{}{
			"userId":       user.ID.Hex(),
			"referralCode": user.ReferralCode,
			"edgesCreated": edgesCreated,
		},
	})
}

// RebuildAncestry lets an operator re-run ancestry building for a user
// whose registration-time build failed. Safe to call repeatedly.
func (rc *RegistrationController) RebuildAncestry(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}

	user, err := rc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
			Data:    err.Error(),
		})
	}

	referrerCode := c.QueryParam("referralCode")
	if referrerCode == "" && user.ReferredBy != nil {
		// Already linked; the builder will no-op on existing edges.
		referrer, err := rc.userRepo.FindByID(ctx, *user.ReferredBy)
		if err == nil {
			referrerCode = referrer.ReferralCode
		}
	}

	edgesCreated, err := rc.tree.BuildAncestry(ctx, userID, referrerCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Ancestry rebuild failed",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ancestry rebuild complete",
		Data:    map[string]int{"edgesCreated": edgesCreated},
	})
}
