package services

import (
	"testing"

	"github.com/goldsip/goldsip_backend/models"
)

func TestPercentageSelectsClass(t *testing.T) {
	curve := LevelCurve{
		Instant: []float64{10, 5, 2},
		Monthly: []float64{3, 1},
	}

	tests := []struct {
		name  string
		class string
		level int
		want  float64
	}{
		{"instant level 1", models.PaymentClassFirst, 1, 10},
		{"instant level 3", models.PaymentClassFirst, 3, 2},
		{"monthly level 1", models.PaymentClassRecurring, 1, 3},
		{"monthly level 2", models.PaymentClassRecurring, 2, 1},
		{"monthly past configured depth", models.PaymentClassRecurring, 3, 0},
		{"instant past configured depth", models.PaymentClassFirst, 4, 0},
		{"level zero", models.PaymentClassFirst, 0, 0},
		{"negative level", models.PaymentClassFirst, -1, 0},
		{"unknown class", "bonus", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := curve.Percentage(tt.class, tt.level); got != tt.want {
				t.Errorf("Percentage(%q, %d) = %v, want %v", tt.class, tt.level, got, tt.want)
			}
		})
	}
}

func TestNormalizeCurvePlanArraysWin(t *testing.T) {
	plan := &models.Plan{
		InstantPercentages: []float64{10, 5},
		MonthlyPercentages: []float64{2},
	}
	globalRows := []models.LevelConfig{
		{Level: 1, InstantPercentage: 99, MonthlyPercentage: 99},
	}

	curve := NormalizeCurve(plan, globalRows)

	if got := curve.Percentage(models.PaymentClassFirst, 1); got != 10 {
		t.Errorf("plan instant level 1 = %v, want 10", got)
	}
	if got := curve.Percentage(models.PaymentClassRecurring, 1); got != 2 {
		t.Errorf("plan monthly level 1 = %v, want 2", got)
	}
	if got := curve.Percentage(models.PaymentClassFirst, 3); got != 0 {
		t.Errorf("unconfigured plan level = %v, want 0", got)
	}
}

func TestNormalizeCurveGlobalRows(t *testing.T) {
	// Rows out of order with a gap at level 2; the gap pays zero.
	globalRows := []models.LevelConfig{
		{Level: 3, InstantPercentage: 1, MonthlyPercentage: 0.5},
		{Level: 1, InstantPercentage: 10, MonthlyPercentage: 3},
	}

	curve := NormalizeCurve(&models.Plan{}, globalRows)

	if got := curve.Percentage(models.PaymentClassFirst, 1); got != 10 {
		t.Errorf("global instant level 1 = %v, want 10", got)
	}
	if got := curve.Percentage(models.PaymentClassFirst, 2); got != 0 {
		t.Errorf("gap level 2 = %v, want 0", got)
	}
	if got := curve.Percentage(models.PaymentClassRecurring, 3); got != 0.5 {
		t.Errorf("global monthly level 3 = %v, want 0.5", got)
	}
}

func TestNormalizeCurveIgnoresOutOfRangeRows(t *testing.T) {
	globalRows := []models.LevelConfig{
		{Level: 0, InstantPercentage: 50},
		{Level: models.MaxReferralDepth + 1, InstantPercentage: 50},
		{Level: models.MaxReferralDepth, InstantPercentage: 1},
	}

	curve := NormalizeCurve(nil, globalRows)

	if got := curve.Percentage(models.PaymentClassFirst, models.MaxReferralDepth); got != 1 {
		t.Errorf("max depth level = %v, want 1", got)
	}
	for level := 1; level < models.MaxReferralDepth; level++ {
		if got := curve.Percentage(models.PaymentClassFirst, level); got != 0 {
			t.Errorf("level %d = %v, want 0", level, got)
		}
	}
}

func TestClampCurveTruncatesAndZeroesNegatives(t *testing.T) {
	in := []float64{10, -5, 3}
	out := clampCurve(in, 2)
	if len(out) != 2 {
		t.Fatalf("got length %d, want 2", len(out))
	}
	if out[0] != 10 || out[1] != 0 {
		t.Errorf("clampCurve = %v, want [10 0]", out)
	}
}
