// services/commission_engine.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/utils"
	"github.com/goldsip/goldsip_backend/websocket"
)

// DistributionResult reports what one Distribute call actually did.
// FailedLevels lists ancestors whose credit could not be committed; a
// re-run of Distribute for the same payment retries exactly those,
// because every level that committed is guarded by the unique
// (sourcePaymentId, recipientId) index.
type DistributionResult struct {
	CreditsIssued int     `json:"creditsIssued"`
	TotalAmount   float64 `json:"totalAmount"`
	SkippedLevels []int   `json:"skippedLevels,omitempty"`
	FailedLevels  []int   `json:"failedLevels,omitempty"`
}

// CommissionEngine fans a completed payment out into commission credits
// for the paying user's ancestor chain.
type CommissionEngine struct {
	db     *mongo.Client
	levels *LevelConfigService
	ledger *WalletLedger
	hub    *websocket.Hub
}

func NewCommissionEngine(db *mongo.Client, levels *LevelConfigService, ledger *WalletLedger, hub *websocket.Hub) *CommissionEngine {
	return &CommissionEngine{db: db, levels: levels, ledger: ledger, hub: hub}
}

// Distribute walks the payer's ancestor chain and issues one commission
// credit per ancestor with a non-zero percentage for the payment's class.
// Each ancestor's commission row and wallet credit commit in one
// transaction. The call is idempotent per recipient: ancestors already
// credited for this payment are skipped, so invoking Distribute again
// after a crash or for a partial failure only fills in the gaps.
func (e *CommissionEngine) Distribute(ctx context.Context, payment models.Payment) (DistributionResult, error) {
	var result DistributionResult

	if payment.Amount <= 0 {
		return result, fmt.Errorf("payment amount must be positive: %w", ErrValidation)
	}
	if payment.Classification != models.PaymentClassFirst && payment.Classification != models.PaymentClassRecurring {
		return result, fmt.Errorf("unknown payment classification %q: %w", payment.Classification, ErrValidation)
	}

	commissionsColl := config.GetCollection(e.db, "commissions")

	// Recipients already credited for this payment (earlier run, crash
	// recovery, duplicate callback).
	cursor, err := commissionsColl.Find(ctx, bson.M{"sourcePaymentId": payment.ID})
	if err != nil {
		return result, fmt.Errorf("failed to check existing commissions: %w", err)
	}
	var existing []models.Commission
	if err := cursor.All(ctx, &existing); err != nil {
		return result, fmt.Errorf("failed to decode existing commissions: %w", err)
	}
	credited := make(map[primitive.ObjectID]bool, len(existing))
	for _, c := range existing {
		credited[c.RecipientID] = true
	}

	edges, err := e.loadAncestry(ctx, payment.UserID)
	if err != nil {
		return result, err
	}
	if len(edges) == 0 {
		return result, nil
	}

	curve, err := e.levels.ResolveCurve(ctx, payment.PlanID)
	if err != nil {
		return result, err
	}

	planned := planCommissions(payment, edges, curve)
	pending, skipped := splitCredited(planned, credited)
	result.SkippedLevels = skipped

	for _, commission := range pending {
		if err := e.creditAncestor(ctx, commission); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost a race with a concurrent run; that run owns the credit.
				result.SkippedLevels = append(result.SkippedLevels, commission.Level)
				continue
			}
			log.Printf("Commission credit failed for payment %s level %d recipient %s: %v",
				payment.ID.Hex(), commission.Level, commission.RecipientID.Hex(), err)
			result.FailedLevels = append(result.FailedLevels, commission.Level)
			continue
		}

		result.CreditsIssued++
		result.TotalAmount += commission.Amount
		e.notifyRecipient(commission)
	}

	return result, nil
}

// creditAncestor commits one commission row and the matching wallet
// credit as a single transaction. Either both land or neither does.
func (e *CommissionEngine) creditAncestor(ctx context.Context, commission models.Commission) error {
	session, err := e.db.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := config.GetCollection(e.db, "commissions").InsertOne(sc, commission); err != nil {
			return nil, err
		}
		if _, err := e.ledger.Credit(sc, commission.RecipientID, models.BucketReferral, commission.Amount); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (e *CommissionEngine) loadAncestry(ctx context.Context, userID primitive.ObjectID) ([]models.ReferralEdge, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cursor, err := config.GetCollection(e.db, "referral_edges").
		Find(ctx, bson.M{"descendantId": userID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to load ancestry: %w", err)
	}
	var edges []models.ReferralEdge
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("failed to decode ancestry: %w", err)
	}
	return edges, nil
}

// notifyRecipient pushes the credit to the recipient over every channel
// we have. All of this is best-effort; the money has already moved.
func (e *CommissionEngine) notifyRecipient(commission models.Commission) {
	title := "Commission earned"
	message := fmt.Sprintf("You earned ₹%.2f from a level %d referral", commission.Amount, commission.Level)
	data := map[string]interface{}{
		"commissionId": commission.ID.Hex(),
		"amount":       fmt.Sprintf("%.2f", commission.Amount),
		"level":        fmt.Sprintf("%d", commission.Level),
	}

	if err := utils.SaveNotification(e.db, commission.RecipientID, title, message, "commission", data); err != nil {
		log.Printf("Failed to save commission notification: %v", err)
	}
	if err := utils.SendFCMNotificationToUser(e.db, commission.RecipientID, title, message, data); err != nil {
		log.Printf("Failed to push commission notification: %v", err)
	}
	if e.hub != nil {
		if err := e.hub.SendToUser(commission.RecipientID, websocket.Notification{
			Type:    websocket.NotificationTypeCommissionCredited,
			Message: message,
			Data:    data,
		}); err != nil {
			log.Printf("Commission websocket push skipped: %v", err)
		}
	}
}

// splitCredited partitions the planned commissions into the ones still
// owed and the levels an earlier run already credited. When every
// recipient is credited the re-run degrades to a total no-op; when only
// some are, the re-run fills exactly the gaps.
func splitCredited(planned []models.Commission, credited map[primitive.ObjectID]bool) (pending []models.Commission, skippedLevels []int) {
	for _, commission := range planned {
		if credited[commission.RecipientID] {
			skippedLevels = append(skippedLevels, commission.Level)
			continue
		}
		pending = append(pending, commission)
	}
	return pending, skippedLevels
}

// planCommissions computes the full commission set for a payment from the
// ancestor chain and the resolved curve: one pending commission per
// ancestor whose level pays a non-zero percentage, closest referrer
// first. Amounts are rounded half-up to the paise.
func planCommissions(payment models.Payment, edges []models.ReferralEdge, curve LevelCurve) []models.Commission {
	class := "monthly"
	if payment.Classification == models.PaymentClassFirst {
		class = "instant"
	}

	now := time.Now()
	var planned []models.Commission
	for _, edge := range edges {
		percentage := curve.Percentage(payment.Classification, edge.Level)
		if percentage <= 0 {
			continue
		}
		planned = append(planned, models.Commission{
			ID:              primitive.NewObjectID(),
			SourcePaymentID: payment.ID,
			RecipientID:     edge.AncestorID,
			SourceUserID:    payment.UserID,
			Level:           edge.Level,
			Percentage:      percentage,
			Amount:          utils.CommissionAmount(payment.Amount, percentage),
			Class:           class,
			Status:          models.CommissionStatusPending,
			CreatedAt:       now,
		})
	}
	return planned
}
