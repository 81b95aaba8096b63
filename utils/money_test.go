package utils

import "testing"

func TestRoundToPaise(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"whole rupees", 100, 100},
		{"already two decimals", 12.34, 12.34},
		{"half paise rounds up", 0.005, 0.01},
		{"just below half rounds down", 10.0049, 10.00},
		{"just above half rounds up", 10.0051, 10.01},
		{"third of a rupee", 1.0 / 3.0, 0.33},
		{"two thirds", 2.0 / 3.0, 0.67},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundToPaise(tt.amount); got != tt.want {
				t.Errorf("RoundToPaise(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCommissionAmount(t *testing.T) {
	tests := []struct {
		name       string
		payment    float64
		percentage float64
		want       float64
	}{
		{"level 1 on 1000", 1000, 10, 100},
		{"level 2 on 1000", 1000, 5, 50},
		{"fractional result", 999, 2.5, 24.98},
		{"half paise goes up", 501, 2.5, 12.53},
		{"zero percent", 1000, 0, 0},
		{"tiny payment", 0.01, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommissionAmount(tt.payment, tt.percentage); got != tt.want {
				t.Errorf("CommissionAmount(%v, %v) = %v, want %v", tt.payment, tt.percentage, got, tt.want)
			}
		})
	}
}
