// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"password,omitempty" bson:"password"`
	FullName     string               `json:"fullName" bson:"fullName"`
	Phone        string               `json:"phone,omitempty" bson:"phone,omitempty"`
	UserType     string               `json:"userType" bson:"userType"` // "user", "admin"
	IsActive     bool                 `json:"isActive" bson:"isActive"`
	ReferralCode string               `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	ReferredBy   *primitive.ObjectID  `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	Referrals    []primitive.ObjectID `json:"referrals,omitempty" bson:"referrals,omitempty"`
	FCMToken     string               `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// RegistrationRequest is what the auth collaborator hands over when a new
// account is created. The referral code is optional; registration must
// succeed whether or not it resolves.
type RegistrationRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
	FCMToken     string `json:"fcmToken,omitempty"`
}

type ReferralSummary struct {
	ReferralCode  string  `json:"referralCode"`
	ReferralCount int     `json:"referralCount"`
	ReferralLink  string  `json:"referralLink"`
	QRCode        string  `json:"qrCode,omitempty"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// Response is the standard API response envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
