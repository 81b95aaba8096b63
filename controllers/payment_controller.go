// controllers/payment_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/services"
)

// PaymentController consumes the gateway collaborator's completed-payment
// callback. The gateway layer verifies the callback signature before the
// request reaches this controller; everything here trusts its input.
type PaymentController struct {
	db     *mongo.Client
	engine *services.CommissionEngine
	ledger *services.WalletLedger
}

func NewPaymentController(db *mongo.Client, engine *services.CommissionEngine, ledger *services.WalletLedger) *PaymentController {
	return &PaymentController{db: db, engine: engine, ledger: ledger}
}

// HandleCallback records the payment, credits the payer's saving bucket
// and fans commissions out to the ancestor chain. Gateways redeliver
// callbacks, so the whole handler is idempotent on gatewayRef.
func (pc *PaymentController) HandleCallback(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var req models.PaymentCallbackRequest
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

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID format",
		})
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	gatewayRef := req.GatewayRef
	if gatewayRef == "" {
		gatewayRef = uuid.NewString()
	}

	payment, created, err := pc.recordPayment(ctx, models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		PlanID:         planID,
		Amount:         req.Amount,
		Classification: req.Classification,
		GatewayRef:     gatewayRef,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment",
			Data:    err.Error(),
		})
	}
	if !created {
		log.Printf("Payment with gateway ref %s already recorded, re-running distribution", gatewayRef)
	}

	// Distribution is idempotent per recipient: a redelivered callback or
	// a crash-recovery re-run only fills in missing credits.
	result, err := pc.engine.Distribute(ctx, *payment)
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusOK
	message := "Payment processed"
	if len(result.FailedLevels) > 0 {
		// Partial success: succeeded levels are committed, failed ones
		// wait for a redistribute call.
		status = http.StatusMultiStatus
		message = "Payment processed with failed commission levels"
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data: map[string]interface{}{
			"paymentId":    payment.ID.Hex(),
			"distribution": result,
		},
	})
}

// recordPayment inserts the payment and the payer's saving-bucket credit
// in one transaction, keyed on the unique gatewayRef index. A duplicate
// delivery returns the already-stored payment with created=false and
// moves no money again.
func (pc *PaymentController) recordPayment(ctx context.Context, payment models.Payment) (*models.Payment, bool, error) {
	session, err := pc.db.StartSession()
	if err != nil {
		return nil, false, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := config.GetCollection(pc.db, "payments").InsertOne(sc, payment); err != nil {
			return nil, err
		}
		if _, err := pc.ledger.Credit(sc, payment.UserID, models.BucketSaving, payment.Amount); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err == nil {
		return &payment, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}

	var existing models.Payment
	findErr := config.GetCollection(pc.db, "payments").
		FindOne(ctx, bson.M{"gatewayRef": payment.GatewayRef}).Decode(&existing)
	if findErr != nil {
		return nil, false, findErr
	}
	return &existing, false, nil
}

// Redistribute re-runs commission distribution for one payment. Used by
// operators after a partial failure; already-credited ancestors are
// skipped.
func (pc *PaymentController) Redistribute(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	paymentID, err := primitive.ObjectIDFromHex(c.Param("paymentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payment ID format",
		})
	}

	var payment models.Payment
	err = config.GetCollection(pc.db, "payments").FindOne(ctx, bson.M{"_id": paymentID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Payment not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
			Data:    err.Error(),
		})
	}

	result, err := pc.engine.Distribute(ctx, payment)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Distribution re-run complete",
		Data:    result,
	})
}
