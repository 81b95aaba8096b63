package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/utils"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"referralCode": code}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user with a freshly generated referral code. On a
// referral-code collision (unique index) it regenerates and retries a few
// times before giving up.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return fmt.Errorf("failed to generate referral code: %w", err)
		}
		user.ReferralCode = code

		_, err = r.collection.InsertOne(ctx, user)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
		// Either the email or the code collided; an email collision will
		// keep failing until the retries run out.
		lastErr = err
	}
	return lastErr
}

// EnsureReferralCode backfills a referral code for accounts created
// before codes existed.
func (r *UserRepository) EnsureReferralCode(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	code, err := utils.GenerateReferralCode()
	if err != nil {
		return "", err
	}
	_, err = r.collection.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"referralCode": code, "updatedAt": time.Now()},
	})
	if err != nil {
		return "", err
	}
	return code, nil
}
