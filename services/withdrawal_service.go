// services/withdrawal_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/utils"
	"github.com/goldsip/goldsip_backend/websocket"
)

// WithdrawalService drives a withdrawal request through
// pending -> approved -> completed/rejected. Funds move exactly once, on
// completion, in the same transaction that flips the status. There is no
// non-transactional fallback path.
type WithdrawalService struct {
	db     *mongo.Client
	ledger *WalletLedger
	payout *PayoutService
	hub    *websocket.Hub
}

func NewWithdrawalService(db *mongo.Client, ledger *WalletLedger, payout *PayoutService, hub *websocket.Hub) *WithdrawalService {
	return &WithdrawalService{db: db, ledger: ledger, payout: payout, hub: hub}
}

// Request creates a pending withdrawal. The balance check here is a soft
// gate for the user's benefit; Complete re-validates against the live
// balance because commissions and other withdrawals may move it first.
func (s *WithdrawalService) Request(ctx context.Context, userID primitive.ObjectID, body models.WithdrawalRequestBody) (*models.Withdrawal, error) {
	if body.Amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive: %w", ErrValidation)
	}
	if body.PaymentMethod == "" || body.PaymentDetails == "" {
		return nil, fmt.Errorf("payment method and details are required: %w", ErrValidation)
	}

	wallet, err := s.ledger.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if body.Amount > wallet.ReferralBalance {
		return nil, fmt.Errorf("requested %.2f but referral balance is %.2f: %w",
			body.Amount, wallet.ReferralBalance, ErrInsufficientBalance)
	}

	withdrawal := models.Withdrawal{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		Amount:         body.Amount,
		PaymentMethod:  body.PaymentMethod,
		PaymentDetails: body.PaymentDetails,
		Reference:      uuid.NewString(),
		Status:         models.WithdrawalStatusPending,
		CreatedAt:      time.Now(),
	}

	_, err = config.GetCollection(s.db, "withdrawals").InsertOne(ctx, withdrawal)
	if err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return &withdrawal, nil
}

// Approve moves a pending request to approved. No funds move.
func (s *WithdrawalService) Approve(ctx context.Context, requestID, adminID primitive.ObjectID, notes string) (*models.Withdrawal, error) {
	withdrawal, err := s.transition(ctx, requestID, models.WithdrawalStatusPending, models.WithdrawalStatusApproved, adminID, notes)
	if err != nil {
		return nil, err
	}
	s.notifyDecision(withdrawal)
	return withdrawal, nil
}

// Reject terminates a pending or approved request. Notes are mandatory so
// the user always learns why. No funds move.
func (s *WithdrawalService) Reject(ctx context.Context, requestID, adminID primitive.ObjectID, notes string) (*models.Withdrawal, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("rejection requires notes: %w", ErrValidation)
	}

	withdrawal, err := s.transitionFrom(ctx, requestID,
		[]string{models.WithdrawalStatusPending, models.WithdrawalStatusApproved},
		models.WithdrawalStatusRejected, adminID, notes)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(withdrawal)
	return withdrawal, nil
}

// Complete performs the irreversible step: it re-validates the balance,
// debits the referral bucket and flips the request to completed, all in
// one transaction. On InsufficientBalance the request stays approved and
// the administrator decides whether to retry later or reject.
func (s *WithdrawalService) Complete(ctx context.Context, requestID, adminID primitive.ObjectID) (*models.Withdrawal, error) {
	withdrawalsColl := config.GetCollection(s.db, "withdrawals")

	var withdrawal models.Withdrawal
	err := withdrawalsColl.FindOne(ctx, bson.M{"_id": requestID}).Decode(&withdrawal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("withdrawal %s: %w", requestID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load withdrawal: %w", err)
	}
	if !models.CanTransition(withdrawal.Status, models.WithdrawalStatusCompleted) {
		return nil, fmt.Errorf("cannot complete withdrawal in status %q: %w", withdrawal.Status, ErrInvalidTransition)
	}

	session, err := s.db.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// The debit filter enforces amount <= referralBalance at this
		// very moment; a balance that dropped since approval aborts here.
		if _, err := s.ledger.Debit(sc, withdrawal.UserID, withdrawal.Amount); err != nil {
			return nil, err
		}

		// Conditional on the source status so a concurrent Complete or
		// Reject loses cleanly and the whole transaction rolls back.
		res, err := withdrawalsColl.UpdateOne(sc,
			bson.M{"_id": requestID, "status": models.WithdrawalStatusApproved},
			bson.M{"$set": bson.M{
				"status":      models.WithdrawalStatusCompleted,
				"adminId":     adminID,
				"processedAt": now,
			}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("withdrawal left approved state concurrently: %w", ErrInvalidTransition)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	withdrawal.Status = models.WithdrawalStatusCompleted
	withdrawal.AdminID = &adminID
	withdrawal.ProcessedAt = &now

	s.notifyDecision(&withdrawal)

	// Hand the transfer to the external payout provider. The ledger is
	// already settled; a payout hiccup is an operational followup, not a
	// rollback.
	if s.payout != nil {
		if err := s.payout.InitiateTransfer(ctx, &withdrawal); err != nil {
			log.Printf("Payout initiation failed for withdrawal %s: %v", withdrawal.ID.Hex(), err)
		}
	}

	return &withdrawal, nil
}

// Get returns one withdrawal by id.
func (s *WithdrawalService) Get(ctx context.Context, requestID primitive.ObjectID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := config.GetCollection(s.db, "withdrawals").FindOne(ctx, bson.M{"_id": requestID}).Decode(&withdrawal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("withdrawal %s: %w", requestID.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load withdrawal: %w", err)
	}
	return &withdrawal, nil
}

// ListForUser returns a user's withdrawal history, newest first.
func (s *WithdrawalService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	return s.list(ctx, bson.M{"userId": userID})
}

// ListByStatus returns all withdrawals in a status for the admin queue;
// an empty status returns everything.
func (s *WithdrawalService) ListByStatus(ctx context.Context, status string) ([]models.Withdrawal, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.list(ctx, filter)
}

func (s *WithdrawalService) list(ctx context.Context, filter bson.M) ([]models.Withdrawal, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(s.db, "withdrawals").Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	var withdrawals []models.Withdrawal
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, fmt.Errorf("failed to decode withdrawals: %w", err)
	}
	return withdrawals, nil
}

// transition performs a single-source-state conditional update.
func (s *WithdrawalService) transition(ctx context.Context, requestID primitive.ObjectID, from, to string, adminID primitive.ObjectID, notes string) (*models.Withdrawal, error) {
	return s.transitionFrom(ctx, requestID, []string{from}, to, adminID, notes)
}

// transitionFrom flips status only when the current status is one of the
// allowed sources. A request in any other state is left untouched and the
// caller gets ErrInvalidTransition (or ErrNotFound).
func (s *WithdrawalService) transitionFrom(ctx context.Context, requestID primitive.ObjectID, from []string, to string, adminID primitive.ObjectID, notes string) (*models.Withdrawal, error) {
	withdrawalsColl := config.GetCollection(s.db, "withdrawals")

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":      to,
		"adminId":     adminID,
		"processedAt": now,
	}}
	if notes != "" {
		update["$set"].(bson.M)["adminNotes"] = notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var withdrawal models.Withdrawal
	err := withdrawalsColl.FindOneAndUpdate(ctx,
		bson.M{"_id": requestID, "status": bson.M{"$in": from}},
		update, opts,
	).Decode(&withdrawal)
	if err == nil {
		return &withdrawal, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	// Distinguish missing request from wrong source state.
	count, countErr := withdrawalsColl.CountDocuments(ctx, bson.M{"_id": requestID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to inspect withdrawal after rejected transition: %w", countErr)
	}
	if count == 0 {
		return nil, fmt.Errorf("withdrawal %s: %w", requestID.Hex(), ErrNotFound)
	}
	return nil, fmt.Errorf("withdrawal is not in %v: %w", from, ErrInvalidTransition)
}

func (s *WithdrawalService) notifyDecision(withdrawal *models.Withdrawal) {
	title := fmt.Sprintf("Withdrawal %s", withdrawal.Status)
	message := fmt.Sprintf("Your withdrawal request for ₹%.2f is %s", withdrawal.Amount, withdrawal.Status)
	data := map[string]interface{}{
		"withdrawalId": withdrawal.ID.Hex(),
		"status":       withdrawal.Status,
		"amount":       fmt.Sprintf("%.2f", withdrawal.Amount),
	}

	if err := utils.SaveNotification(s.db, withdrawal.UserID, title, message, "withdrawal", data); err != nil {
		log.Printf("Failed to save withdrawal notification: %v", err)
	}
	utils.SendWithdrawalEmail(s.db, withdrawal.UserID, withdrawal.Status, withdrawal.Amount, withdrawal.AdminNotes)
	if err := utils.SendFCMNotificationToUser(s.db, withdrawal.UserID, title, message, data); err != nil {
		log.Printf("Failed to push withdrawal notification: %v", err)
	}
	if s.hub != nil {
		if err := s.hub.SendToUser(withdrawal.UserID, websocket.Notification{
			Type:    websocket.NotificationTypeWithdrawalUpdate,
			Message: message,
			Data:    data,
		}); err != nil {
			log.Printf("Withdrawal websocket push skipped: %v", err)
		}
	}
}
