package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/skilldeck/lms-backend/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultTimeout = 10 * time.Second

// initCollections resolves the collection handles used by the storage. The
// collections themselves (and their validators and indexes) are created by
// the migrations, so this only binds the handles.
func (ms *MongoStorage) initCollections(database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// the migrations collection must exist before the first migration run
	// records anything into it
	currentCollections, err := ms.collectionNames(ctx, database)
	if err != nil {
		return err
	}
	migrationsExists := false
	for _, name := range currentCollections {
		if name == "migrations" {
			migrationsExists = true
			break
		}
	}
	if !migrationsExists {
		if err := ms.DBClient.Database(database).CreateCollection(ctx, "migrations"); err != nil {
			return fmt.Errorf("failed to create migrations collection: %w", err)
		}
	}
	db := ms.DBClient.Database(database)
	ms.users = db.Collection("users")
	ms.courses = db.Collection("courses")
	ms.lectures = db.Collection("lectures")
	ms.purchases = db.Collection("purchases")
	ms.objects = db.Collection("objects")
	ms.migrations = db.Collection("migrations")
	return nil
}

// collectionNames returns the names of the collections in the given database.
// It uses the ListCollections method of the MongoDB client to get the
// collections info and decode the names from the result.
func (ms *MongoStorage) collectionNames(ctx context.Context, database string) ([]string, error) {
	collectionsCursor, err := ms.DBClient.Database(database).ListCollections(ctx, bson.D{})
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

// dynamicUpdateDocument creates a BSON update document from a struct, including only non-zero fields.
// It uses reflection to iterate over the struct fields and create the update document.
// The struct fields must have a bson tag to be included in the update document.
// The _id field is skipped.
func dynamicUpdateDocument(item interface{}, alwaysUpdateTags []string) (bson.M, error) {
	val := reflect.ValueOf(item)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input must be a valid struct")
	}
	update := bson.M{}
	typ := val.Type()
	// create a map for quick lookup
	alwaysUpdateMap := make(map[string]bool, len(alwaysUpdateTags))
	for _, tag := range alwaysUpdateTags {
		alwaysUpdateMap[tag] = true
	}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("bson")
		// strip bson tag options such as omitempty
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}
		if tag == "" || tag == "-" || tag == "_id" {
			continue
		}
		// check if the field should always be updated or is not the zero value
		_, alwaysUpdate := alwaysUpdateMap[tag]
		if alwaysUpdate || !reflect.DeepEqual(field.Interface(), reflect.Zero(field.Type()).Interface()) {
			update[tag] = field.Interface()
		}
	}
	return bson.M{"$set": update}, nil
}

// readSession runs fn inside a non-transactional session. Read operations
// don't need transactions, but we use a session for consistency.
func (ms *MongoStorage) readSession(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := ms.DBClient.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)
	return mongo.WithSession(ctx, session, fn)
}
