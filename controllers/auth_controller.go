// controllers/auth_controller.go
package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/middleware"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/utils"
)

type AuthController struct {
	db *mongo.Client
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{db: db}
}

// AdminLogin authenticates an admin and issues a JWT
func (ac *AuthController) AdminLogin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	// Bootstrap admin from .env so the dashboard works before any admin
	// document exists.
	envEmail := os.Getenv("ADMIN_EMAIL")
	envPassword := os.Getenv("ADMIN_PASSWORD")
	if envEmail != "" && envPassword != "" && req.Email == envEmail {
		if req.Password != envPassword {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		return ac.issueToken(c, "admin", req.Email)
	}

	var admin models.Admin
	err := config.GetCollection(ac.db, "admins").
		FindOne(ctx, bson.M{"email": req.Email}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
			Data:    err.Error(),
		})
	}

	if !utils.CheckPassword(req.Password, admin.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	return ac.issueToken(c, admin.ID.Hex(), admin.Email)
}

func (ac *AuthController) issueToken(c echo.Context, adminID, email string) error {
	token, err := middleware.GenerateJWT(adminID, email, "admin")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token": token,
			"user": map[string]interface{}{
				"email": email,
				"type":  "admin",
			},
		},
	})
}
