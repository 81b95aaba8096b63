package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a gold-savings plan a user can subscribe to. Plans may carry
// their own commission curves as inline percentage arrays; when those are
// empty the global level_configs rows apply instead.
type Plan struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Type               string             `json:"type" bson:"type"` // "monthly", "onetime"
	Amount             float64            `json:"amount" bson:"amount"`
	DurationMonths     int                `json:"durationMonths,omitempty" bson:"durationMonths,omitempty"`
	InstantPercentages []float64          `json:"instantPercentages,omitempty" bson:"instantPercentages,omitempty"`
	MonthlyPercentages []float64          `json:"monthlyPercentages,omitempty" bson:"monthlyPercentages,omitempty"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LevelConfig is one row of the global commission curve: the percentage
// paid at a given referral depth for each commission class.
type LevelConfig struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Level             int                `json:"level" bson:"level"`
	InstantPercentage float64            `json:"instantPercentage" bson:"instantPercentage"`
	MonthlyPercentage float64            `json:"monthlyPercentage" bson:"monthlyPercentage"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type LevelConfigRequest struct {
	Level             int     `json:"level" validate:"required,min=1,max=10"`
	InstantPercentage float64 `json:"instantPercentage" validate:"min=0"`
	MonthlyPercentage float64 `json:"monthlyPercentage" validate:"min=0"`
}

type PlanCurveRequest struct {
	InstantPercentages []float64 `json:"instantPercentages" validate:"max=10,dive,min=0"`
	MonthlyPercentages []float64 `json:"monthlyPercentages" validate:"max=5,dive,min=0"`
}
