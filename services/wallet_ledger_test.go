package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation must reject bad input before any storage access, so these
// run against a ledger with no database behind it.

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	ledger := NewWalletLedger(nil)
	userID := primitive.NewObjectID()

	for _, amount := range []float64{0, -1, -0.01} {
		_, err := ledger.Credit(context.Background(), userID, "referral", amount)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Credit(amount=%v) error = %v, want ErrValidation", amount, err)
		}
	}
}

func TestCreditRejectsUnknownBucket(t *testing.T) {
	ledger := NewWalletLedger(nil)

	_, err := ledger.Credit(context.Background(), primitive.NewObjectID(), "bonus", 10)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Credit(bucket=bonus) error = %v, want ErrValidation", err)
	}
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	ledger := NewWalletLedger(nil)

	for _, amount := range []float64{0, -5} {
		_, err := ledger.Debit(context.Background(), primitive.NewObjectID(), amount)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Debit(amount=%v) error = %v, want ErrValidation", amount, err)
		}
	}
}

func TestBucketField(t *testing.T) {
	tests := []struct {
		bucket  string
		want    string
		wantErr bool
	}{
		{"referral", "referralBalance", false},
		{"saving", "savingBalance", false},
		{"total", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := bucketField(tt.bucket)
		if tt.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("bucketField(%q) error = %v, want ErrValidation", tt.bucket, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("bucketField(%q) unexpected error: %v", tt.bucket, err)
		}
		if got != tt.want {
			t.Errorf("bucketField(%q) = %q, want %q", tt.bucket, got, tt.want)
		}
	}
}
