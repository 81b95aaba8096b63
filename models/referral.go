package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxReferralDepth is the deepest ancestor level that ever earns a
// commission. Curves may configure fewer levels; anything beyond what is
// configured pays zero.
const MaxReferralDepth = 10

// ReferralEdge links a user to one ancestor in their referral chain.
// Level 1 is the direct referrer. Edges are written once at registration
// and never mutated; (descendantId, level) is unique.
type ReferralEdge struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DescendantID primitive.ObjectID `json:"descendantId" bson:"descendantId"`
	AncestorID   primitive.ObjectID `json:"ancestorId" bson:"ancestorId"`
	Level        int                `json:"level" bson:"level"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
