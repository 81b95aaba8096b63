package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/goldsip/goldsip_backend/models"
)

// chainOf builds a contiguous ancestor chain of the given depth for a
// descendant, levels 1..depth.
func chainOf(descendant primitive.ObjectID, ancestors []primitive.ObjectID) []models.ReferralEdge {
	edges := make([]models.ReferralEdge, 0, len(ancestors))
	for i, anc := range ancestors {
		edges = append(edges, models.ReferralEdge{
			DescendantID: descendant,
			AncestorID:   anc,
			Level:        i + 1,
		})
	}
	return edges
}

func TestShiftAncestryDirectReferrerOnly(t *testing.T) {
	newUser := primitive.NewObjectID()
	referrer := primitive.NewObjectID()

	edges := shiftAncestry(newUser, referrer, nil, models.MaxReferralDepth)

	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Level != 1 || edges[0].AncestorID != referrer || edges[0].DescendantID != newUser {
		t.Errorf("unexpected edge: %+v", edges[0])
	}
}

func TestShiftAncestryShiftsLevels(t *testing.T) {
	newUser := primitive.NewObjectID()
	referrer := primitive.NewObjectID()
	grand := primitive.NewObjectID()
	great := primitive.NewObjectID()

	referrerChain := chainOf(referrer, []primitive.ObjectID{grand, great})

	edges := shiftAncestry(newUser, referrer, referrerChain, models.MaxReferralDepth)

	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}

	wantAncestors := []primitive.ObjectID{referrer, grand, great}
	for i, edge := range edges {
		if edge.Level != i+1 {
			t.Errorf("edge %d has level %d, want %d", i, edge.Level, i+1)
		}
		if edge.AncestorID != wantAncestors[i] {
			t.Errorf("edge %d has ancestor %s, want %s", i, edge.AncestorID.Hex(), wantAncestors[i].Hex())
		}
		if edge.DescendantID != newUser {
			t.Errorf("edge %d has descendant %s, want new user", i, edge.DescendantID.Hex())
		}
	}
}

func TestShiftAncestryTruncatesAtMaxDepth(t *testing.T) {
	newUser := primitive.NewObjectID()
	referrer := primitive.NewObjectID()

	// Referrer already sits at full depth; the new user's chain must be
	// cut at MaxReferralDepth, not extended to 11.
	ancestors := make([]primitive.ObjectID, models.MaxReferralDepth)
	for i := range ancestors {
		ancestors[i] = primitive.NewObjectID()
	}
	referrerChain := chainOf(referrer, ancestors)

	edges := shiftAncestry(newUser, referrer, referrerChain, models.MaxReferralDepth)

	if len(edges) != models.MaxReferralDepth {
		t.Fatalf("got %d edges, want %d", len(edges), models.MaxReferralDepth)
	}
	last := edges[len(edges)-1]
	if last.Level != models.MaxReferralDepth {
		t.Errorf("deepest edge level = %d, want %d", last.Level, models.MaxReferralDepth)
	}
	// The referrer's level-10 ancestor falls off the chain.
	if last.AncestorID == ancestors[len(ancestors)-1] {
		t.Errorf("deepest ancestor should have been truncated")
	}
}

func TestShiftAncestryLevelsContiguous(t *testing.T) {
	newUser := primitive.NewObjectID()
	referrer := primitive.NewObjectID()
	ancestors := []primitive.ObjectID{
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(),
		primitive.NewObjectID(), primitive.NewObjectID(),
	}

	edges := shiftAncestry(newUser, referrer, chainOf(referrer, ancestors), models.MaxReferralDepth)

	for i, edge := range edges {
		if edge.Level != i+1 {
			t.Fatalf("levels not contiguous: edge %d has level %d", i, edge.Level)
		}
	}
}

func TestBuildAncestryExistingEdgesNoOp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("retried registration keeps the existing chain", func(mt *mtest.T) {
		// CountDocuments runs an aggregate whose single result carries n.
		// A non-zero count must short-circuit before any other command.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "goldsip.referral_edges", mtest.FirstBatch,
			bson.D{{Key: "n", Value: 2}}))

		svc := NewReferralTreeService(mt.Client)
		created, err := svc.BuildAncestry(context.Background(), primitive.NewObjectID(), "GOLD1234")
		if err != nil {
			mt.Fatalf("BuildAncestry: %v", err)
		}
		if created != 0 {
			mt.Errorf("created %d edges on a retried registration, want 0", created)
		}
	})
}

func TestBuildAncestryUnresolvableCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown code registers without ancestry", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "goldsip.referral_edges", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "goldsip.users", mtest.FirstBatch),
		)

		svc := NewReferralTreeService(mt.Client)
		created, err := svc.BuildAncestry(context.Background(), primitive.NewObjectID(), "NOSUCH00")
		if err != nil {
			mt.Fatalf("BuildAncestry: %v", err)
		}
		if created != 0 {
			mt.Errorf("created %d edges for an unresolvable code, want 0", created)
		}
	})
}

func TestBuildAncestrySelfReferralIgnored(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("own code creates no edges", func(mt *mtest.T) {
		newUserID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "goldsip.referral_edges", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "goldsip.users", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: newUserID}, {Key: "referralCode", Value: "SELF0001"}}),
		)

		svc := NewReferralTreeService(mt.Client)
		created, err := svc.BuildAncestry(context.Background(), newUserID, "SELF0001")
		if err != nil {
			mt.Fatalf("BuildAncestry: %v", err)
		}
		if created != 0 {
			mt.Errorf("created %d edges for a self-referral, want 0", created)
		}
	})
}
