// services/referral_tree.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/repositories"
)

// ReferralTreeService materializes the ancestor chain of a newly
// registered user as referral_edges rows. Building the tree is strictly
// optional for registration: a missing or invalid referral code creates
// zero edges and is still a success.
type ReferralTreeService struct {
	db    *mongo.Client
	users *repositories.UserRepository
}

func NewReferralTreeService(db *mongo.Client) *ReferralTreeService {
	return &ReferralTreeService{db: db, users: repositories.NewUserRepository(db)}
}

// BuildAncestry resolves referrerCode and writes the new user's ancestor
// edges up to models.MaxReferralDepth. The referrer becomes the level-1
// ancestor and each of the referrer's own ancestors shifts down one
// level. Safe to call again for the same user: existing edges make the
// call a no-op that reports zero new edges.
func (s *ReferralTreeService) BuildAncestry(ctx context.Context, newUserID primitive.ObjectID, referrerCode string) (int, error) {
	edgesColl := config.GetCollection(s.db, "referral_edges")

	// A retried registration must not duplicate the chain.
	existing, err := edgesColl.CountDocuments(ctx, bson.M{"descendantId": newUserID})
	if err != nil {
		return 0, fmt.Errorf("failed to check existing ancestry: %w", err)
	}
	if existing > 0 {
		log.Printf("Ancestry already built for user %s, skipping", newUserID.Hex())
		return 0, nil
	}

	if referrerCode == "" {
		return 0, nil
	}

	referrer, err := s.users.FindByReferralCode(ctx, referrerCode)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Printf("Referral code %s does not resolve, registering user %s without ancestry", referrerCode, newUserID.Hex())
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up referrer: %w", err)
	}

	if referrer.ID == newUserID {
		log.Printf("User %s attempted self-referral, ignoring code", newUserID.Hex())
		return 0, nil
	}

	// The referrer's own chain, closest first.
	findOpts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cursor, err := edgesColl.Find(ctx, bson.M{"descendantId": referrer.ID}, findOpts)
	if err != nil {
		return 0, fmt.Errorf("failed to load referrer ancestry: %w", err)
	}
	var referrerEdges []models.ReferralEdge
	if err := cursor.All(ctx, &referrerEdges); err != nil {
		return 0, fmt.Errorf("failed to decode referrer ancestry: %w", err)
	}

	edges := shiftAncestry(newUserID, referrer.ID, referrerEdges, models.MaxReferralDepth)

	now := time.Now()
	docs := make([]interface{}, 0, len(edges))
	for i := range edges {
		edges[i].ID = primitive.NewObjectID()
		edges[i].CreatedAt = now
		docs = append(docs, edges[i])
	}

	_, err = edgesColl.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		// A concurrent retry may have inserted the same chain; the unique
		// (descendantId, level) index turns that into duplicate key errors.
		if mongo.IsDuplicateKeyError(err) {
			log.Printf("Ancestry for user %s already inserted concurrently", newUserID.Hex())
			return 0, nil
		}
		return 0, fmt.Errorf("failed to insert ancestry edges: %w", err)
	}

	// Denormalized referral bookkeeping on the user rows.
	usersColl := config.GetCollection(s.db, "users")
	_, err = usersColl.UpdateByID(ctx, newUserID, bson.M{
		"$set": bson.M{"referredBy": referrer.ID, "updatedAt": now},
	})
	if err != nil {
		log.Printf("Failed to set referredBy for user %s: %v", newUserID.Hex(), err)
	}
	_, err = usersColl.UpdateByID(ctx, referrer.ID, bson.M{
		"$addToSet": bson.M{"referrals": newUserID},
	})
	if err != nil {
		log.Printf("Failed to record referral on referrer %s: %v", referrer.ID.Hex(), err)
	}

	return len(edges), nil
}

// shiftAncestry builds the new user's edge set from the referrer and the
// referrer's existing chain: the referrer is level 1 and the referrer's
// level-L ancestor becomes level L+1, truncated at maxDepth. Levels come
// out contiguous from 1 because the referrer's own chain is contiguous.
func shiftAncestry(newUserID, referrerID primitive.ObjectID, referrerEdges []models.ReferralEdge, maxDepth int) []models.ReferralEdge {
	edges := []models.ReferralEdge{{
		DescendantID: newUserID,
		AncestorID:   referrerID,
		Level:        1,
	}}

	for _, edge := range referrerEdges {
		level := edge.Level + 1
		if level > maxDepth {
			break
		}
		edges = append(edges, models.ReferralEdge{
			DescendantID: newUserID,
			AncestorID:   edge.AncestorID,
			Level:        level,
		})
	}

	return edges
}
