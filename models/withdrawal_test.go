package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to approved", WithdrawalStatusPending, WithdrawalStatusApproved, true},
		{"pending to rejected", WithdrawalStatusPending, WithdrawalStatusRejected, true},
		{"pending to completed skips approval", WithdrawalStatusPending, WithdrawalStatusCompleted, false},
		{"approved to completed", WithdrawalStatusApproved, WithdrawalStatusCompleted, true},
		{"approved to rejected", WithdrawalStatusApproved, WithdrawalStatusRejected, true},
		{"approved back to pending", WithdrawalStatusApproved, WithdrawalStatusPending, false},
		{"completed is terminal", WithdrawalStatusCompleted, WithdrawalStatusApproved, false},
		{"completed cannot complete again", WithdrawalStatusCompleted, WithdrawalStatusCompleted, false},
		{"rejected is terminal", WithdrawalStatusRejected, WithdrawalStatusApproved, false},
		{"unknown status", "frozen", WithdrawalStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
