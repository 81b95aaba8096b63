package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment classification selects which commission class a payment feeds:
// a first (or one-time) payment pays the instant curve, a recurring
// monthly installment pays the monthly curve.
const (
	PaymentClassFirst     = "first"
	PaymentClassRecurring = "recurring"
)

// Payment is an immutable record of a completed monetary event, written
// once from the gateway callback and never updated.
type Payment struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	PlanID         primitive.ObjectID `json:"planId" bson:"planId"`
	Amount         float64            `json:"amount" bson:"amount"`
	Classification string             `json:"classification" bson:"classification"`
	GatewayRef     string             `json:"gatewayRef" bson:"gatewayRef"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// PaymentCallbackRequest is the gateway collaborator's completed-payment
// notification. The gateway layer has already verified the callback
// signature before this reaches us.
type PaymentCallbackRequest struct {
	UserID         string  `json:"userId" validate:"required"`
	PlanID         string  `json:"planId" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Classification string  `json:"classification" validate:"required,oneof=first recurring"`
	GatewayRef     string  `json:"gatewayRef,omitempty"`
}
