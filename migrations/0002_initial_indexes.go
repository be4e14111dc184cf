package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(2, "initial_indexes", upInitialIndexes, downInitialIndexes)
}

func upInitialIndexes(ctx context.Context, database *mongo.Database) error {
	ms := struct {
		users     *mongo.Collection
		courses   *mongo.Collection
		lectures  *mongo.Collection
		purchases *mongo.Collection
	}{
		users:     database.Collection("users"),
		courses:   database.Collection("courses"),
		lectures:  database.Collection("lectures"),
		purchases: database.Collection("purchases"),
	}

	// create an index for the 'email' field on users (must be unique)
	if _, err := ms.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create index on email for users: %w", err)
	}

	// create an index for the 'phone' field on users
	if _, err := ms.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetSparse(true),
	}); err != nil {
		return fmt.Errorf("failed to create index on phone for users: %w", err)
	}

	// create an index for the 'creatorId' field on courses
	if _, err := ms.courses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "creatorId", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on creatorId for courses: %w", err)
	}

	// create an index for the 'category' field on courses, used by the search endpoint
	if _, err := ms.courses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on category for courses: %w", err)
	}

	// create an index for the 'courseId' field on lectures
	if _, err := ms.lectures.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "courseId", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on courseId for lectures: %w", err)
	}

	// create an index for the 'paymentId' field on purchases. The provider
	// session id is unique, but pending purchases are created before the
	// session exists, hence the sparse option.
	if _, err := ms.purchases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "paymentId", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetUnique(true).SetSparse(true),
	}); err != nil {
		return fmt.Errorf("failed to create index on paymentId for purchases: %w", err)
	}

	// create an index for the ('userId', 'courseId') tuple on purchases,
	// used by the purchased-status queries
	if _, err := ms.purchases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},   // 1 for ascending order
			{Key: "courseId", Value: 1}, // 1 for ascending order
		},
	}); err != nil {
		return fmt.Errorf("failed to create index on userId and courseId for purchases: %w", err)
	}

	return nil
}

func downInitialIndexes(ctx context.Context, database *mongo.Database) error {
	// Drop all indexes from all collections
	for _, collName := range []string{
		"users",
		"courses",
		"lectures",
		"purchases",
	} {
		collection := database.Collection(collName)
		if _, err := collection.Indexes().DropAll(ctx); err != nil {
			return fmt.Errorf("failed to drop indexes for collection %s: %w", collName, err)
		}
	}

	return nil
}
