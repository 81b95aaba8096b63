package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
)

// Commission records one ancestor's cut of one payment. The pair
// (sourcePaymentId, recipientId) is unique so a re-run of distribution
// cannot credit the same recipient twice.
type Commission struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SourcePaymentID primitive.ObjectID `json:"sourcePaymentId" bson:"sourcePaymentId"`
	RecipientID     primitive.ObjectID `json:"recipientId" bson:"recipientId"`
	SourceUserID    primitive.ObjectID `json:"sourceUserId" bson:"sourceUserId"`
	Level           int                `json:"level" bson:"level"`
	Percentage      float64            `json:"percentage" bson:"percentage"`
	Amount          float64            `json:"amount" bson:"amount"`
	Class           string             `json:"class" bson:"class"` // "instant", "monthly"
	Status          string             `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	PaidAt          *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}
