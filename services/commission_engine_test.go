package services

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goldsip/goldsip_backend/models"
)

// The two-level payout scenario: A refers B refers C, level 1 pays 10%,
// level 2 pays 5%. C's ₹1000 first payment pays B ₹100 and A ₹50.
func TestPlanCommissionsTwoLevelChain(t *testing.T) {
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	userC := primitive.NewObjectID()

	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         userC,
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	edges := []models.ReferralEdge{
		{DescendantID: userC, AncestorID: userB, Level: 1},
		{DescendantID: userC, AncestorID: userA, Level: 2},
	}
	curve := LevelCurve{Instant: []float64{10, 5}}

	planned := planCommissions(payment, edges, curve)

	if len(planned) != 2 {
		t.Fatalf("got %d commissions, want 2", len(planned))
	}

	first := planned[0]
	if first.RecipientID != userB || first.Level != 1 || first.Amount != 100 || first.Percentage != 10 {
		t.Errorf("level 1 commission = recipient %s level %d amount %v pct %v, want B/1/100/10",
			first.RecipientID.Hex(), first.Level, first.Amount, first.Percentage)
	}

	second := planned[1]
	if second.RecipientID != userA || second.Level != 2 || second.Amount != 50 || second.Percentage != 5 {
		t.Errorf("level 2 commission = recipient %s level %d amount %v pct %v, want A/2/50/5",
			second.RecipientID.Hex(), second.Level, second.Amount, second.Percentage)
	}

	for _, c := range planned {
		if c.SourcePaymentID != payment.ID {
			t.Errorf("commission not keyed to source payment")
		}
		if c.SourceUserID != userC {
			t.Errorf("commission source user = %s, want C", c.SourceUserID.Hex())
		}
		if c.Status != models.CommissionStatusPending {
			t.Errorf("commission status = %q, want pending", c.Status)
		}
		if c.Class != "instant" {
			t.Errorf("commission class = %q, want instant", c.Class)
		}
	}
}

func TestPlanCommissionsRecurringUsesMonthlyCurve(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         500,
		Classification: models.PaymentClassRecurring,
	}
	edges := []models.ReferralEdge{
		{AncestorID: primitive.NewObjectID(), Level: 1},
		{AncestorID: primitive.NewObjectID(), Level: 2},
	}
	curve := LevelCurve{
		Instant: []float64{10, 5},
		Monthly: []float64{2},
	}

	planned := planCommissions(payment, edges, curve)

	if len(planned) != 1 {
		t.Fatalf("got %d commissions, want 1 (monthly curve has one level)", len(planned))
	}
	if planned[0].Amount != 10 {
		t.Errorf("monthly level 1 amount = %v, want 10", planned[0].Amount)
	}
	if planned[0].Class != "monthly" {
		t.Errorf("class = %q, want monthly", planned[0].Class)
	}
}

func TestPlanCommissionsSkipsZeroLevels(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	edges := []models.ReferralEdge{
		{AncestorID: primitive.NewObjectID(), Level: 1},
		{AncestorID: primitive.NewObjectID(), Level: 2},
		{AncestorID: primitive.NewObjectID(), Level: 3},
	}
	// Level 2 is an explicit zero gap.
	curve := LevelCurve{Instant: []float64{10, 0, 1}}

	planned := planCommissions(payment, edges, curve)

	if len(planned) != 2 {
		t.Fatalf("got %d commissions, want 2", len(planned))
	}
	if planned[0].Level != 1 || planned[1].Level != 3 {
		t.Errorf("planned levels = %d,%d, want 1,3", planned[0].Level, planned[1].Level)
	}
}

func TestPlanCommissionsEmptyChain(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	curve := LevelCurve{Instant: []float64{10}}

	if planned := planCommissions(payment, nil, curve); len(planned) != 0 {
		t.Errorf("got %d commissions for empty chain, want 0", len(planned))
	}
}

func TestSplitCreditedSecondRunIsNoOp(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	edges := []models.ReferralEdge{
		{AncestorID: primitive.NewObjectID(), Level: 1},
		{AncestorID: primitive.NewObjectID(), Level: 2},
	}
	curve := LevelCurve{Instant: []float64{10, 5}}

	planned := planCommissions(payment, edges, curve)

	// A completed first run credited every recipient.
	credited := make(map[primitive.ObjectID]bool)
	for _, c := range planned {
		credited[c.RecipientID] = true
	}

	pending, skipped := splitCredited(planned, credited)

	if len(pending) != 0 {
		t.Errorf("re-run would credit %d recipients again, want 0", len(pending))
	}
	if len(skipped) != len(planned) {
		t.Errorf("re-run skipped %d levels, want all %d", len(skipped), len(planned))
	}
}

func TestSplitCreditedFillsOnlyGaps(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	edges := []models.ReferralEdge{
		{AncestorID: primitive.NewObjectID(), Level: 1},
		{AncestorID: primitive.NewObjectID(), Level: 2},
		{AncestorID: primitive.NewObjectID(), Level: 3},
	}
	curve := LevelCurve{Instant: []float64{10, 5, 2}}

	planned := planCommissions(payment, edges, curve)

	// The first run crashed after crediting level 1 only.
	credited := map[primitive.ObjectID]bool{planned[0].RecipientID: true}

	pending, skipped := splitCredited(planned, credited)

	if len(skipped) != 1 || skipped[0] != 1 {
		t.Errorf("skipped levels = %v, want [1]", skipped)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending commissions, want 2", len(pending))
	}
	if pending[0].Level != 2 || pending[1].Level != 3 {
		t.Errorf("pending levels = %d,%d, want 2,3", pending[0].Level, pending[1].Level)
	}
}

func TestSplitCreditedNothingCredited(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         500,
		Classification: models.PaymentClassFirst,
	}
	edges := []models.ReferralEdge{
		{AncestorID: primitive.NewObjectID(), Level: 1},
		{AncestorID: primitive.NewObjectID(), Level: 2},
	}
	curve := LevelCurve{Instant: []float64{10, 5}}

	planned := planCommissions(payment, edges, curve)

	pending, skipped := splitCredited(planned, map[primitive.ObjectID]bool{})

	if len(skipped) != 0 {
		t.Errorf("skipped levels = %v, want none", skipped)
	}
	if len(pending) != len(planned) {
		t.Fatalf("got %d pending commissions, want all %d", len(pending), len(planned))
	}
	for i := range pending {
		if pending[i].RecipientID != planned[i].RecipientID {
			t.Errorf("pending order diverged from planned order at position %d", i)
		}
	}
}

func TestPlanCommissionsDeterministicOrder(t *testing.T) {
	payment := models.Payment{
		ID:             primitive.NewObjectID(),
		UserID:         primitive.NewObjectID(),
		Amount:         1000,
		Classification: models.PaymentClassFirst,
	}
	var edges []models.ReferralEdge
	for level := 1; level <= 5; level++ {
		edges = append(edges, models.ReferralEdge{AncestorID: primitive.NewObjectID(), Level: level})
	}
	curve := LevelCurve{Instant: []float64{5, 4, 3, 2, 1}}

	planned := planCommissions(payment, edges, curve)

	if len(planned) != 5 {
		t.Fatalf("got %d commissions, want 5", len(planned))
	}
	for i, c := range planned {
		if c.Level != i+1 {
			t.Errorf("position %d has level %d, want closest-first ordering", i, c.Level)
		}
	}
}
