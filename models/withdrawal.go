package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCompleted = "completed"
)

// Withdrawal is a user's request to pay out part of the referral bucket.
// Funds only move on the approved -> completed transition.
type Withdrawal struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `json:"userId" bson:"userId"`
	Amount         float64             `json:"amount" bson:"amount"`
	PaymentMethod  string              `json:"paymentMethod" bson:"paymentMethod"`
	PaymentDetails string              `json:"paymentDetails" bson:"paymentDetails"`
	Reference      string              `json:"reference" bson:"reference"`
	Status         string              `json:"status" bson:"status"`
	AdminID        *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	AdminNotes     string              `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	ProcessedAt    *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
}

// withdrawalTransitions is the full transition table. Completed and
// rejected are terminal.
var withdrawalTransitions = map[string][]string{
	WithdrawalStatusPending:  {WithdrawalStatusApproved, WithdrawalStatusRejected},
	WithdrawalStatusApproved: {WithdrawalStatusCompleted, WithdrawalStatusRejected},
}

// CanTransition reports whether a withdrawal may move from one status to
// another. Any transition not listed in the table is invalid, including
// transitions out of a terminal status.
func CanTransition(from, to string) bool {
	for _, next := range withdrawalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type WithdrawalRequestBody struct {
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string  `json:"paymentMethod" validate:"required"`
	PaymentDetails string  `json:"paymentDetails" validate:"required"`
}

type WithdrawalDecisionBody struct {
	AdminNotes string `json:"adminNotes,omitempty"`
}
