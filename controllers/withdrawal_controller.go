// controllers/withdrawal_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goldsip/goldsip_backend/middleware"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/services"
)

type WithdrawalController struct {
	withdrawals *services.WithdrawalService
}

func NewWithdrawalController(withdrawals *services.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{withdrawals: withdrawals}
}

// RequestWithdrawal opens a new pending withdrawal for the authenticated user
func (wc *WithdrawalController) RequestWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := extractObjectID(c)
	if err != nil {
		return err
	}

	var body models.WithdrawalRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	withdrawal, err := wc.withdrawals.Request(ctx, userID, body)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request submitted",
		Data:    withdrawal,
	})
}

// GetMyWithdrawals lists the authenticated user's withdrawal history
func (wc *WithdrawalController) GetMyWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := extractObjectID(c)
	if err != nil {
		return err
	}

	withdrawals, err := wc.withdrawals.ListForUser(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals fetched successfully",
		Data:    withdrawals,
	})
}

// ListWithdrawals lists withdrawal requests for admins, optionally
// filtered by ?status=
func (wc *WithdrawalController) ListWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := c.QueryParam("status")
	if status == "" {
		status = models.WithdrawalStatusPending
	}

	withdrawals, err := wc.withdrawals.ListByStatus(ctx, status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals fetched successfully",
		Data:    withdrawals,
	})
}

// GetWithdrawal fetches a single withdrawal request by ID
func (wc *WithdrawalController) GetWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID format",
		})
	}

	withdrawal, err := wc.withdrawals.Get(ctx, requestID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal fetched successfully",
		Data:    withdrawal,
	})
}

// ApproveWithdrawal moves a pending request to approved
func (wc *WithdrawalController) ApproveWithdrawal(c echo.Context) error {
	return wc.decide(c, models.WithdrawalStatusApproved)
}

// RejectWithdrawal moves a pending or approved request to rejected
func (wc *WithdrawalController) RejectWithdrawal(c echo.Context) error {
	return wc.decide(c, models.WithdrawalStatusRejected)
}

// CompleteWithdrawal debits the wallet and closes an approved request
func (wc *WithdrawalController) CompleteWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	requestID, adminID, err := wc.decisionIDs(c)
	if err != nil {
		return err
	}

	withdrawal, err := wc.withdrawals.Complete(ctx, requestID, adminID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal completed",
		Data:    withdrawal,
	})
}

func (wc *WithdrawalController) decide(c echo.Context, target string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requestID, adminID, err := wc.decisionIDs(c)
	if err != nil {
		return err
	}

	var body models.WithdrawalDecisionBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var withdrawal *models.Withdrawal
	switch target {
	case models.WithdrawalStatusApproved:
		withdrawal, err = wc.withdrawals.Approve(ctx, requestID, adminID, body.AdminNotes)
	case models.WithdrawalStatusRejected:
		withdrawal, err = wc.withdrawals.Reject(ctx, requestID, adminID, body.AdminNotes)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal " + target,
		Data:    withdrawal,
	})
}

func (wc *WithdrawalController) decisionIDs(c echo.Context) (requestID, adminID primitive.ObjectID, err error) {
	requestID, err = primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID format",
		})
	}
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}
	// The .env bootstrap admin has no document, so its token carries a
	// non-hex subject; record it as the zero id.
	adminID, _ = primitive.ObjectIDFromHex(userID)
	return requestID, adminID, nil
}

func extractObjectID(c echo.Context) (primitive.ObjectID, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}
	return objID, nil
}
