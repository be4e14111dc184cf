package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (ms *MongoStorage) fetchUserFromDB(ctx context.Context, id primitive.ObjectID) (*User, error) {
	// find the user in the database
	result := ms.users.FindOne(ctx, bson.M{"_id": id})
	user := &User{}
	if err := result.Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// User method returns the user with the given ID. If the user doesn't exist,
// it returns a specific error. If other errors occur, it returns the error.
func (ms *MongoStorage) User(userID string) (*User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidData
	}
	// create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchUserFromDB(ctx, objID)
}

// UserByEmail method returns the user with the given email. If the user
// doesn't exist, it returns a specific error. If other errors occur, it
// returns the error.
func (ms *MongoStorage) UserByEmail(email string) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.users.FindOne(ctx, bson.M{"email": email})
	user := &User{}
	if err := result.Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetUser method creates or updates the user in the database. If the user
// already exists, it updates the fields that have changed. If the user doesn't
// exist, it creates it. It returns the hex representation of the user ID.
func (ms *MongoStorage) SetUser(user *User) (string, error) {
	if user.Email == "" {
		return "", ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	// create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	// if the user provided doesn't have enrolled courses, create an empty slice
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []primitive.ObjectID{}
	}
	// check if the user exists or needs to be created
	if user.ID != primitive.NilObjectID {
		user.UpdatedAt = time.Now()
		// if the user exists, update it with the new data
		updateDoc, err := dynamicUpdateDocument(user, nil)
		if err != nil {
			return "", err
		}
		if _, err := ms.users.UpdateOne(ctx, bson.M{"_id": user.ID}, updateDoc); err != nil {
			return "", err
		}
	} else {
		// if the user doesn't exist, create it setting the ID first
		user.ID = primitive.NewObjectID()
		user.CreatedAt = time.Now()
		if _, err := ms.users.InsertOne(ctx, user); err != nil {
			if strings.Contains(err.Error(), "duplicate key error") {
				return "", ErrAlreadyExists
			}
			return "", err
		}
	}
	return user.ID.Hex(), nil
}

// DelUser method deletes the user from the database. If an error occurs, it
// returns the error.
func (ms *MongoStorage) DelUser(user *User) error {
	// check if the user is valid (has an ID or an email)
	if user.ID == primitive.NilObjectID && user.Email == "" {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	// create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	// delete the user from the database using the ID or the email
	filter := bson.M{"_id": user.ID}
	if user.ID == primitive.NilObjectID {
		filter = bson.M{"email": user.Email}
	}
	_, err := ms.users.DeleteOne(ctx, filter)
	return err
}

// UserIsEnrolled method checks if the user with the given ID is enrolled in
// the course with the given ID.
func (ms *MongoStorage) UserIsEnrolled(userID, courseID string) (bool, error) {
	user, err := ms.User(userID)
	if err != nil {
		return false, err
	}
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return false, ErrInvalidData
	}
	for _, enrolled := range user.EnrolledCourses {
		if enrolled == objID {
			return true, nil
		}
	}
	return false, nil
}
