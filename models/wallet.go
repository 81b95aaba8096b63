package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet buckets. Only the referral bucket is withdrawable.
const (
	BucketReferral = "referral"
	BucketSaving   = "saving"
)

// Wallet is the single mutable balance aggregate, one row per user.
// totalBalance is always referralBalance + savingBalance, recomputed in
// the same update that moves either bucket. totalEarnings and
// totalWithdrawn are lifetime counters and only ever grow.
type Wallet struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	ReferralBalance float64            `json:"referralBalance" bson:"referralBalance"`
	SavingBalance   float64            `json:"savingBalance" bson:"savingBalance"`
	TotalBalance    float64            `json:"totalBalance" bson:"totalBalance"`
	TotalEarnings   float64            `json:"totalEarnings" bson:"totalEarnings"`
	TotalWithdrawn  float64            `json:"totalWithdrawn" bson:"totalWithdrawn"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}
