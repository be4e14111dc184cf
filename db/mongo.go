package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/skilldeck/lms-backend/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStorage uses an external MongoDB service for storing users, courses,
// lectures and the purchases made against them.
type MongoStorage struct {
	DBClient *mongo.Client
	database string
	keysLock sync.RWMutex

	users      *mongo.Collection
	courses    *mongo.Collection
	lectures   *mongo.Collection
	purchases  *mongo.Collection
	objects    *mongo.Collection
	migrations *mongo.Collection
}

func New(url, database string) (*MongoStorage, error) {
	var err error
	ms := &MongoStorage{}
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	// preparing connection
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	// create a new client with the connection options
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// init the collections
	ms.DBClient = client
	ms.database = database
	if err := ms.initCollections(database); err != nil {
		return nil, err
	}
	// if the reset flag is enabled, Reset drops the database documents,
	// otherwise just apply the pending migrations
	if reset := os.Getenv("LMS_MONGO_RESET_DB"); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
	} else if err := ms.RunMigrationsUp(); err != nil {
		return nil, err
	}
	return ms, nil
}

func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.DBClient.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops all the collections of the database and recreates them by
// replaying the full migration chain.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ms.DBClient.Database(ms.database).Drop(ctx); err != nil {
		return err
	}
	if err := ms.initCollections(ms.database); err != nil {
		return err
	}
	return ms.RunMigrationsUp()
}
