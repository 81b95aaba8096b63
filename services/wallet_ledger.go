// services/wallet_ledger.go
package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
)

// WalletLedger is the only component allowed to move wallet balances.
// Every mutation is a single conditional update expressing the new
// balances in terms of the old, so concurrent credits and debits against
// the same wallet serialize on the document without a read-modify-write
// window. totalBalance is recomputed inside the same update and can never
// drift from its buckets.
type WalletLedger struct {
	db *mongo.Client
}

func NewWalletLedger(db *mongo.Client) *WalletLedger {
	return &WalletLedger{db: db}
}

// Credit adds amount to one bucket of the user's wallet, creating the
// wallet row on first credit. Commission credits land in the referral
// bucket and also grow totalEarnings; saving deposits only move the
// saving bucket.
func (l *WalletLedger) Credit(ctx context.Context, userID primitive.ObjectID, bucket string, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", ErrValidation)
	}
	field, err := bucketField(bucket)
	if err != nil {
		return nil, err
	}

	earningsDelta := 0.0
	if bucket == models.BucketReferral {
		earningsDelta = amount
	}

	update := bson.A{
		bson.M{"$set": bson.M{
			"userId":        userID,
			field:           bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + field, 0}}, amount}},
			"totalEarnings": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$totalEarnings", 0}}, earningsDelta}},
			"updatedAt":     "$$NOW",
		}},
		bson.M{"$set": bson.M{
			"totalBalance": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$referralBalance", 0}},
				bson.M{"$ifNull": bson.A{"$savingBalance", 0}},
			}},
		}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var wallet models.Wallet
	err = config.GetCollection(l.db, "wallets").
		FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).
		Decode(&wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return &wallet, nil
}

// Debit removes amount from the referral bucket, the only withdrawable
// bucket, and grows totalWithdrawn in the same update. The filter
// requires referralBalance >= amount, so an insufficient balance matches
// nothing and no partial write can occur.
func (l *WalletLedger) Debit(ctx context.Context, userID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", ErrValidation)
	}

	filter := bson.M{
		"userId":          userID,
		"referralBalance": bson.M{"$gte": amount},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"referralBalance": bson.M{"$add": bson.A{"$referralBalance", -amount}},
			"totalWithdrawn":  bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$totalWithdrawn", 0}}, amount}},
			"updatedAt":       "$$NOW",
		}},
		bson.M{"$set": bson.M{
			"totalBalance": bson.M{"$add": bson.A{
				"$referralBalance",
				bson.M{"$ifNull": bson.A{"$savingBalance", 0}},
			}},
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wallet models.Wallet
	err := config.GetCollection(l.db, "wallets").
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&wallet)
	if err == nil {
		return &wallet, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	// Nothing matched: either the wallet does not exist or the referral
	// bucket cannot cover the debit.
	count, countErr := config.GetCollection(l.db, "wallets").CountDocuments(ctx, bson.M{"userId": userID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to inspect wallet after rejected debit: %w", countErr)
	}
	if count == 0 {
		return nil, fmt.Errorf("wallet for user %s: %w", userID.Hex(), ErrNotFound)
	}
	return nil, fmt.Errorf("debit of %.2f exceeds referral balance: %w", amount, ErrInsufficientBalance)
}

// Get returns the user's wallet, or a zero-balance wallet if none exists
// yet (no credit has ever been issued).
func (l *WalletLedger) Get(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := config.GetCollection(l.db, "wallets").FindOne(ctx, bson.M{"userId": userID}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.Wallet{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

func bucketField(bucket string) (string, error) {
	switch bucket {
	case models.BucketReferral:
		return "referralBalance", nil
	case models.BucketSaving:
		return "savingBalance", nil
	default:
		return "", fmt.Errorf("unknown wallet bucket %q: %w", bucket, ErrValidation)
	}
}
