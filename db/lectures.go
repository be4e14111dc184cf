package db

import (
	"context"
	"time"

	"github.com/skilldeck/lms-backend/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetLecture creates or updates a lecture and keeps the parent course lecture
// list in sync. Returns the hex representation of the lecture ID.
func (ms *MongoStorage) SetLecture(lecture *Lecture) (string, error) {
	if lecture.Title == "" || lecture.CourseID == primitive.NilObjectID {
		return "", ErrInvalidData
	}

	// Check that the course exists before starting the transaction
	if _, err := ms.Course(lecture.CourseID.Hex()); err != nil {
		return "", err
	}

	// Set timestamps and ID
	if lecture.ID != primitive.NilObjectID {
		lecture.UpdatedAt = time.Now()
	} else {
		lecture.ID = primitive.NewObjectID()
		lecture.CreatedAt = time.Now()
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		updateDoc, err := dynamicUpdateDocument(lecture, []string{"isPreviewFree"})
		if err != nil {
			return err
		}
		filter := bson.M{"_id": lecture.ID}
		opts := options.Update().SetUpsert(true)
		if _, err := ms.lectures.UpdateOne(sessCtx, filter, updateDoc, opts); err != nil {
			return err
		}
		// keep the lecture reference in the course document, addToSet makes
		// the operation idempotent
		courseFilter := bson.M{"_id": lecture.CourseID}
		courseUpdate := bson.M{"$addToSet": bson.M{"lectures": lecture.ID}}
		_, err = ms.courses.UpdateOne(sessCtx, courseFilter, courseUpdate)
		return err
	})
	if err != nil {
		return "", err
	}
	return lecture.ID.Hex(), nil
}

// Lecture retrieves a lecture from the DB based on its ID
func (ms *MongoStorage) Lecture(lectureID string) (*Lecture, error) {
	objID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.lectures.FindOne(ctx, bson.M{"_id": objID})
	lecture := &Lecture{}
	if err := result.Decode(lecture); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lecture, nil
}

// LecturesByCourse retrieves all the lectures of the course with the given ID.
func (ms *MongoStorage) LecturesByCourse(courseID string) ([]*Lecture, error) {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var lectures []*Lecture
	err = ms.readSession(ctx, func(sessCtx mongo.SessionContext) error {
		cursor, err := ms.lectures.Find(sessCtx, bson.M{"courseId": objID})
		if err != nil {
			return err
		}
		defer func() {
			if err := cursor.Close(sessCtx); err != nil {
				log.Warnw("error closing cursor", "error", err)
			}
		}()

		lectures = []*Lecture{}
		return cursor.All(sessCtx, &lectures)
	})
	if err != nil {
		return nil, err
	}
	return lectures, nil
}

// DelLecture removes a lecture and its reference from the parent course.
func (ms *MongoStorage) DelLecture(lectureID string) error {
	objID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		return ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := ms.lectures.DeleteOne(sessCtx, bson.M{"_id": objID}); err != nil {
			return err
		}
		// remove the lecture reference from any course holding it
		filter := bson.M{"lectures": objID}
		update := bson.M{"$pull": bson.M{"lectures": objID}}
		_, err = ms.courses.UpdateMany(sessCtx, filter, update)
		return err
	})
}
