package db

import (
	"context"
	"fmt"
	"time"

	"github.com/skilldeck/lms-backend/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetCourse creates or updates a course. Returns the hex representation of
// the course ID.
func (ms *MongoStorage) SetCourse(course *Course) (string, error) {
	if course.Title == "" || course.CreatorID == primitive.NilObjectID {
		return "", ErrInvalidData
	}

	// Set timestamps and ID
	if course.ID != primitive.NilObjectID {
		// If the course exists, update it with the new data
		course.UpdatedAt = time.Now()
	} else {
		// If the course doesn't exist, create its id
		course.ID = primitive.NewObjectID()
		course.CreatedAt = time.Now()
	}
	if course.LectureIDs == nil {
		course.LectureIDs = []primitive.ObjectID{}
	}
	if course.EnrolledStudents == nil {
		course.EnrolledStudents = []primitive.ObjectID{}
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		updateDoc, err := dynamicUpdateDocument(course, []string{"published"})
		if err != nil {
			return err
		}

		filter := bson.M{"_id": course.ID}
		opts := options.Update().SetUpsert(true)
		_, err = ms.courses.UpdateOne(sessCtx, filter, updateDoc, opts)
		return err
	})
	if err != nil {
		return "", err
	}
	return course.ID.Hex(), nil
}

func (ms *MongoStorage) fetchCourseFromDB(ctx context.Context, id primitive.ObjectID) (*Course, error) {
	result := ms.courses.FindOne(ctx, bson.M{"_id": id})
	course := &Course{}
	if err := result.Decode(course); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

// Course retrieves a course from the DB based on its ID
func (ms *MongoStorage) Course(courseID string) (*Course, error) {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchCourseFromDB(ctx, objID)
}

// CourseWithDetails retrieves a course with its creator and its lecture
// documents populated.
func (ms *MongoStorage) CourseWithDetails(courseID string) (*CourseWithDetails, error) {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var course *CourseWithDetails
	err = ms.readSession(ctx, func(sessCtx mongo.SessionContext) error {
		pipeline := mongo.Pipeline{
			{primitive.E{Key: "$match", Value: bson.D{{Key: "_id", Value: objID}}}},
			{primitive.E{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: "users"},
				{Key: "localField", Value: "creatorId"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "creator"},
			}}},
			{primitive.E{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$creator"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
			{primitive.E{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: "lectures"},
				{Key: "localField", Value: "lectures"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "lectureDetails"},
			}}},
		}

		cursor, err := ms.courses.Aggregate(sessCtx, pipeline)
		if err != nil {
			return fmt.Errorf("failed to get course details: %w", err)
		}
		defer func() {
			if err := cursor.Close(sessCtx); err != nil {
				log.Warnw("error closing cursor", "error", err)
			}
		}()

		var results []*CourseWithDetails
		if err := cursor.All(sessCtx, &results); err != nil {
			return err
		}
		if len(results) == 0 {
			return ErrNotFound
		}
		course = results[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	// never expose the creator password hash
	if course.Creator != nil {
		course.Creator.Password = ""
	}
	return course, nil
}

// PublishedCourses retrieves all the published courses.
func (ms *MongoStorage) PublishedCourses() ([]*Course, error) {
	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var courses []*Course
	err := ms.readSession(ctx, func(sessCtx mongo.SessionContext) error {
		cursor, err := ms.courses.Find(sessCtx, bson.M{"published": true})
		if err != nil {
			return err
		}
		defer func() {
			if err := cursor.Close(sessCtx); err != nil {
				log.Warnw("error closing cursor", "error", err)
			}
		}()

		courses = []*Course{}
		return cursor.All(sessCtx, &courses)
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// DelCourse removes a course and all its lectures
func (ms *MongoStorage) DelCourse(courseID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Delete the lectures of the course first
		if _, err := ms.lectures.DeleteMany(sessCtx, bson.M{"courseId": objID}); err != nil {
			return err
		}
		// Delete the course from the database using the ID
		filter := bson.M{"_id": objID}
		_, err = ms.courses.DeleteOne(sessCtx, filter)
		return err
	})
}
