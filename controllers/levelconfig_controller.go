// controllers/levelconfig_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/services"
)

// LevelConfigController manages the commission curves: the global
// level_configs rows and the per-plan percentage arrays that override
// them. Every write invalidates the cached curve.
type LevelConfigController struct {
	db     *mongo.Client
	levels *services.LevelConfigService
}

func NewLevelConfigController(db *mongo.Client, levels *services.LevelConfigService) *LevelConfigController {
	return &LevelConfigController{db: db, levels: levels}
}

// ListLevelConfigs returns the global curve rows ordered by level
func (lc *LevelConfigController) ListLevelConfigs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cursor, err := config.GetCollection(lc.db, "level_configs").Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch level configs",
			Data:    err.Error(),
		})
	}
	var rows []models.LevelConfig
	if err := cursor.All(ctx, &rows); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode level configs",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Level configs fetched successfully",
		Data:    rows,
	})
}

// UpsertLevelConfig creates or replaces one global curve row by level
func (lc *LevelConfigController) UpsertLevelConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LevelConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	update := bson.M{"$set": bson.M{
		"level":             req.Level,
		"instantPercentage": req.InstantPercentage,
		"monthlyPercentage": req.MonthlyPercentage,
		"updatedAt":         time.Now(),
	}}
	_, err := config.GetCollection(lc.db, "level_configs").UpdateOne(
		ctx, bson.M{"level": req.Level}, update, options.Update().SetUpsert(true))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save level config",
			Data:    err.Error(),
		})
	}

	// Global rows feed every plan without its own curve.
	lc.levels.InvalidateCurve(ctx, nil)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Level config saved",
	})
}

// SetPlanCurve replaces a plan's inline percentage arrays
func (lc *LevelConfigController) SetPlanCurve(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID format",
		})
	}

	var req models.PlanCurveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	update := bson.M{"$set": bson.M{
		"instantPercentages": req.InstantPercentages,
		"monthlyPercentages": req.MonthlyPercentages,
		"updatedAt":          time.Now(),
	}}
	result, err := config.GetCollection(lc.db, "plans").UpdateByID(ctx, planID, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update plan curve",
			Data:    err.Error(),
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Plan not found",
		})
	}

	lc.levels.InvalidateCurve(ctx, &planID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan curve updated",
	})
}

// CreatePlan adds a new savings plan
func (lc *LevelConfigController) CreatePlan(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var plan models.Plan
	if err := c.Bind(&plan); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if plan.Name == "" || plan.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan name and a positive amount are required",
		})
	}

	plan.ID = primitive.NewObjectID()
	plan.IsActive = true
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	if _, err := config.GetCollection(lc.db, "plans").InsertOne(ctx, plan); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create plan",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Plan created successfully",
		Data:    plan,
	})
}

// ListPlans returns the active savings plans
func (lc *LevelConfigController) ListPlans(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(lc.db, "plans").Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch plans",
			Data:    err.Error(),
		})
	}
	var plans []models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode plans",
			Data:    err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plans fetched successfully",
		Data:    plans,
	})
}
