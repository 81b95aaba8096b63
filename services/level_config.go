// services/level_config.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
)

const (
	curveCacheTTL       = 5 * time.Minute
	curveCacheKeyPrefix = "goldsip:curve:"
	curveCacheGlobalKey = "global"
)

// LevelCurve is the normalized commission curve: percentage per referral
// depth for each commission class, index = level-1. A level past the end
// of a slice pays zero; that is the contract for unconfigured levels, not
// an error.
type LevelCurve struct {
	Instant []float64 `json:"instant"`
	Monthly []float64 `json:"monthly"`
}

// Percentage returns the payout percentage at a level for a payment
// class. Unknown classes and out-of-range levels return 0.
func (c LevelCurve) Percentage(class string, level int) float64 {
	var curve []float64
	switch class {
	case models.PaymentClassFirst:
		curve = c.Instant
	case models.PaymentClassRecurring:
		curve = c.Monthly
	default:
		return 0
	}
	if level < 1 || level > len(curve) {
		return 0
	}
	return curve[level-1]
}

// NormalizeCurve flattens both configuration shapes into one LevelCurve.
// A plan carrying inline percentage arrays wins; otherwise the global
// level_configs rows apply. Global rows may arrive in any order and with
// missing levels, which pay zero.
func NormalizeCurve(plan *models.Plan, globalRows []models.LevelConfig) LevelCurve {
	if plan != nil && (len(plan.InstantPercentages) > 0 || len(plan.MonthlyPercentages) > 0) {
		return LevelCurve{
			Instant: clampCurve(plan.InstantPercentages, models.MaxReferralDepth),
			Monthly: clampCurve(plan.MonthlyPercentages, models.MaxReferralDepth),
		}
	}

	instant := make([]float64, models.MaxReferralDepth)
	monthly := make([]float64, models.MaxReferralDepth)
	for _, row := range globalRows {
		if row.Level < 1 || row.Level > models.MaxReferralDepth {
			continue
		}
		instant[row.Level-1] = row.InstantPercentage
		monthly[row.Level-1] = row.MonthlyPercentage
	}
	return LevelCurve{Instant: instant, Monthly: monthly}
}

// clampCurve copies a percentage array, truncating at maxDepth and
// zeroing negative entries.
func clampCurve(percentages []float64, maxDepth int) []float64 {
	if len(percentages) > maxDepth {
		percentages = percentages[:maxDepth]
	}
	out := make([]float64, len(percentages))
	for i, p := range percentages {
		if p > 0 {
			out[i] = p
		}
	}
	return out
}

// LevelConfigService resolves the commission curve for a plan, caching
// resolved curves in Redis. The cache is read-through with a short TTL
// and explicitly busted when an admin changes a curve.
type LevelConfigService struct {
	db    *mongo.Client
	redis *redis.Client
}

func NewLevelConfigService(db *mongo.Client, redisClient *redis.Client) *LevelConfigService {
	return &LevelConfigService{db: db, redis: redisClient}
}

// ResolveCurve returns the curve in effect for a plan.
func (s *LevelConfigService) ResolveCurve(ctx context.Context, planID primitive.ObjectID) (LevelCurve, error) {
	cacheKey := curveCacheKeyPrefix + planID.Hex()

	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	var plan models.Plan
	err := config.GetCollection(s.db, "plans").FindOne(ctx, bson.M{"_id": planID}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return LevelCurve{}, fmt.Errorf("plan %s: %w", planID.Hex(), ErrNotFound)
		}
		return LevelCurve{}, fmt.Errorf("failed to load plan: %w", err)
	}

	globalRows, err := s.loadGlobalRows(ctx)
	if err != nil {
		return LevelCurve{}, err
	}

	curve := NormalizeCurve(&plan, globalRows)
	s.cacheSet(ctx, cacheKey, curve)
	return curve, nil
}

// InvalidateCurve drops the cached curve for one plan, or every cached
// curve when planID is nil (a global row changed).
func (s *LevelConfigService) InvalidateCurve(ctx context.Context, planID *primitive.ObjectID) {
	if s.redis == nil {
		return
	}
	if planID != nil {
		s.redis.Del(ctx, curveCacheKeyPrefix+planID.Hex())
		return
	}
	iter := s.redis.Scan(ctx, 0, curveCacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		s.redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Failed to scan curve cache keys: %v", err)
	}
}

func (s *LevelConfigService) loadGlobalRows(ctx context.Context) ([]models.LevelConfig, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cursor, err := config.GetCollection(s.db, "level_configs").Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to load level configs: %w", err)
	}
	var rows []models.LevelConfig
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode level configs: %w", err)
	}
	return rows, nil
}

func (s *LevelConfigService) cacheGet(ctx context.Context, key string) (LevelCurve, bool) {
	if s.redis == nil {
		return LevelCurve{}, false
	}
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Curve cache read failed: %v", err)
		}
		return LevelCurve{}, false
	}
	var curve LevelCurve
	if err := json.Unmarshal([]byte(raw), &curve); err != nil {
		log.Printf("Curve cache entry corrupt, dropping: %v", err)
		s.redis.Del(ctx, key)
		return LevelCurve{}, false
	}
	return curve, true
}

func (s *LevelConfigService) cacheSet(ctx context.Context, key string, curve LevelCurve) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(curve)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, curveCacheTTL).Err(); err != nil {
		log.Printf("Curve cache write failed: %v", err)
	}
}
