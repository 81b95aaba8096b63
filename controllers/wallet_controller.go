// controllers/wallet_controller.go
package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/repositories"
	"github.com/goldsip/goldsip_backend/services"
)

// WalletController exposes the read-only projections: balances, the
// commission earnings report and the referral summary. All mutation goes
// through the ledger and the engines, never through here.
type WalletController struct {
	db       *mongo.Client
	ledger   *services.WalletLedger
	userRepo *repositories.UserRepository
}

func NewWalletController(db *mongo.Client, ledger *services.WalletLedger, userRepo *repositories.UserRepository) *WalletController {
	return &WalletController{db: db, ledger: ledger, userRepo: userRepo}
}

// GetWallet returns the authenticated user's balances
func (wc *WalletController) GetWallet(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := extractObjectID(c)
	if err != nil {
		return err
	}

	wallet, err := wc.ledger.Get(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallet fetched successfully",
		Data:    wallet,
	})
}

// GetCommissions returns the authenticated user's commission history,
// newest first
func (wc *WalletController) GetCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := extractObjectID(c)
	if err != nil {
		return err
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(wc.db, "commissions").
		Find(ctx, bson.M{"recipientId": userID}, findOpts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commission history",
			Data:    err.Error(),
		})
	}
	var commissions []models.Commission
	if err := cursor.All(ctx, &commissions); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode commission history",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission history fetched successfully",
		Data:    commissions,
	})
}

// GetReferralSummary returns the user's referral code, share link with QR
// code, referral count and lifetime earnings
func (wc *WalletController) GetReferralSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := extractObjectID(c)
	if err != nil {
		return err
	}

	code, err := wc.userRepo.EnsureReferralCode(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to resolve referral code",
			Data:    err.Error(),
		})
	}

	user, err := wc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
			Data:    err.Error(),
		})
	}

	wallet, err := wc.ledger.Get(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	link := referralLink(code)
	qrCode, err := generateQRCode(link)
	if err != nil {
		// The summary is still useful without the image.
		qrCode = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral summary fetched successfully",
		Data: models.ReferralSummary{
			ReferralCode:  code,
			ReferralCount: len(user.Referrals),
			ReferralLink:  link,
			QRCode:        qrCode,
			TotalEarnings: wallet.TotalEarnings,
		},
	})
}

func referralLink(code string) string {
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "https://goldsip.in"
	}
	return baseURL + "/register?ref=" + code
}

// generateQRCode renders the referral link as a base64 PNG data URI
func generateQRCode(content string) (string, error) {
	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
