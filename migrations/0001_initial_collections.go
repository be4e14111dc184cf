package migrations

import (
	"context"
	"fmt"
	"slices"

	"github.com/skilldeck/lms-backend/internal"
	"github.com/skilldeck/lms-backend/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(1, "initial_collections", upInitialCollections, downInitialCollections)
}

var collectionsToCreate = []string{
	"users",
	"courses",
	"lectures",
	"purchases",
	"objects",
	"migrations",
}

var collectionsValidators = map[string]bson.M{
	"users":     usersCollectionValidator,
	"purchases": purchasesCollectionValidator,
}

var usersCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "email", "password"},
		"properties": bson.M{
			"email": bson.M{
				"bsonType":    "string",
				"description": "must be an email and is required",
				"pattern":     internal.EmailRegexTemplate,
			},
			"password": bson.M{
				"bsonType":    "string",
				"description": "must be a string and is required",
				"minLength":   8,
			},
		},
	},
}

var purchasesCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "courseId", "userId", "status"},
		"properties": bson.M{
			"courseId": bson.M{
				"bsonType":    "objectId",
				"description": "must be an objectId and is required",
			},
			"userId": bson.M{
				"bsonType":    "objectId",
				"description": "must be an objectId and is required",
			},
			"status": bson.M{
				"enum":        []string{"pending", "completed"},
				"description": "must be either pending or completed and is required",
			},
			"amount": bson.M{
				"bsonType":    []string{"double", "int", "long", "decimal"},
				"description": "must be a number",
				"minimum":     0,
			},
		},
	},
}

func upInitialCollections(ctx context.Context, database *mongo.Database) error {
	// get the current collections names to create only the missing ones
	currentCollections, err := listCollectionsInDB(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to get current collections: %w", err)
	}
	for _, name := range collectionsToCreate {
		// if the collection doesn't exist, create it
		if !slices.Contains(currentCollections, name) {
			// if the collection has a validator create it with it
			opts := options.CreateCollection()
			if validator, ok := collectionsValidators[name]; ok {
				opts = opts.SetValidator(validator).SetValidationLevel("strict").SetValidationAction("error")
			}
			// create the collection
			if err := database.CreateCollection(ctx, name, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func downInitialCollections(context.Context, *mongo.Database) error {
	// Strictly speaking, this down func would Drop all created collections, but that's too risky/destructive.
	// So we do nothing here. (the up func is idempotent anyway)
	return nil
}

// listCollectionsInDB returns the names of the collections in the given database.
// It uses the ListCollections method of the MongoDB client to get the
// collections info and decode the names from the result.
func listCollectionsInDB(ctx context.Context, database *mongo.Database) ([]string, error) {
	collectionsCursor, err := database.ListCollections(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := collectionsCursor.Close(ctx); err != nil {
			log.Warnw("failed to close collections cursor", "error", err)
		}
	}()
	collections := []bson.D{}
	if err := collectionsCursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	names := []string{}
	for _, col := range collections {
		for _, v := range col {
			if v.Key == "name" {
				names = append(names, v.Value.(string))
			}
		}
	}
	return names, nil
}
