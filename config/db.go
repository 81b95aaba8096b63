// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only use the Docker service name as fallback in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://mongodb:27017/?replicaSet=rs0"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DBName()).Collection(collectionName)
}

// DBName returns the configured database name
func DBName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "goldsip"
	}
	return dbName
}

// setupCollections ensures all necessary collections and indexes exist.
// The unique indexes on referral_edges and commissions are what make the
// tree builder and the commission engine idempotent, so they are not
// optional tuning.
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DBName())

	collections := []string{
		"users", "referral_edges", "plans", "level_configs",
		"payments", "commissions", "wallets", "withdrawals",
		"admins", "notifications",
	}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	type indexSpec struct {
		collection string
		model      mongo.IndexModel
	}

	specs := []indexSpec{
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"users", mongo.IndexModel{
			Keys: bson.D{{Key: "referralCode", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"referralCode": bson.M{"$type": "string"}}),
		}},
		{"referral_edges", mongo.IndexModel{
			Keys:    bson.D{{Key: "descendantId", Value: 1}, {Key: "level", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"referral_edges", mongo.IndexModel{
			Keys: bson.D{{Key: "ancestorId", Value: 1}},
		}},
		{"commissions", mongo.IndexModel{
			Keys:    bson.D{{Key: "sourcePaymentId", Value: 1}, {Key: "recipientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"commissions", mongo.IndexModel{
			Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{"payments", mongo.IndexModel{
			Keys:    bson.D{{Key: "gatewayRef", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"wallets", mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"level_configs", mongo.IndexModel{
			Keys:    bson.D{{Key: "level", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"withdrawals", mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
	}

	for _, spec := range specs {
		_, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model)
		if err != nil {
			log.Printf("Error creating index on %s: %v", spec.collection, err)
		}
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
