// Package test provides shared helpers for integration tests, mainly the
// MongoDB test container.
package test

import (
	"context"
	"fmt"

	"github.com/skilldeck/lms-backend/internal"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// MongoImage is the image used for the MongoDB test container.
const MongoImage = "mongo:7"

// StartMongoContainer starts a MongoDB container configured as a single node
// replica set. Transactions require a replica set, a standalone server
// rejects them.
func StartMongoContainer(ctx context.Context) (*mongodb.MongoDBContainer, error) {
	container, err := mongodb.Run(ctx, MongoImage, mongodb.WithReplicaSet("rs0"))
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}
	return container, nil
}

// RandomDatabaseName returns a random database name so that concurrent test
// packages sharing a container do not step on each other.
func RandomDatabaseName() string {
	return "testdb_" + internal.RandomHex(8)
}
