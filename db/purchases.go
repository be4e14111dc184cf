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

// SetPurchase creates or updates a purchase. Returns the hex representation
// of the purchase ID.
func (ms *MongoStorage) SetPurchase(purchase *Purchase) (string, error) {
	if purchase.CourseID == primitive.NilObjectID || purchase.UserID == primitive.NilObjectID {
		return "", ErrInvalidData
	}
	if purchase.Status == "" {
		purchase.Status = PurchaseStatusPending
	}

	// Set timestamps and ID
	if purchase.ID != primitive.NilObjectID {
		purchase.UpdatedAt = time.Now()
	} else {
		purchase.ID = primitive.NewObjectID()
		purchase.CreatedAt = time.Now()
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		updateDoc, err := dynamicUpdateDocument(purchase, []string{"status", "amount"})
		if err != nil {
			return err
		}

		filter := bson.M{"_id": purchase.ID}
		opts := options.Update().SetUpsert(true)
		_, err = ms.purchases.UpdateOne(sessCtx, filter, updateDoc, opts)
		return err
	})
	if err != nil {
		return "", err
	}
	return purchase.ID.Hex(), nil
}

// Purchase retrieves a purchase from the DB based on its ID
func (ms *MongoStorage) Purchase(purchaseID string) (*Purchase, error) {
	objID, err := primitive.ObjectIDFromHex(purchaseID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return ms.fetchPurchaseFromDB(ctx, bson.M{"_id": objID})
}

// PurchaseByPaymentID retrieves the purchase bound to the given payment
// provider session ID.
func (ms *MongoStorage) PurchaseByPaymentID(paymentID string) (*Purchase, error) {
	if paymentID == "" {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return ms.fetchPurchaseFromDB(ctx, bson.M{"paymentId": paymentID})
}

// PurchaseByUserAndCourse retrieves the purchase of the given user for the
// given course, whatever its status. Pending purchases count too.
func (ms *MongoStorage) PurchaseByUserAndCourse(userID, courseID string) (*Purchase, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidData
	}
	courseObjID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return ms.fetchPurchaseFromDB(ctx, bson.M{"userId": userObjID, "courseId": courseObjID})
}

func (ms *MongoStorage) fetchPurchaseFromDB(ctx context.Context, filter bson.M) (*Purchase, error) {
	result := ms.purchases.FindOne(ctx, filter)
	purchase := &Purchase{}
	if err := result.Decode(purchase); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return purchase, nil
}

// CompletedPurchasesWithCourses retrieves all the completed purchases of the
// given user with their course documents populated.
func (ms *MongoStorage) CompletedPurchasesWithCourses(userID string) ([]*PurchaseWithCourse, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var purchases []*PurchaseWithCourse
	err = ms.readSession(ctx, func(sessCtx mongo.SessionContext) error {
		pipeline := mongo.Pipeline{
			{primitive.E{Key: "$match", Value: bson.D{
				{Key: "userId", Value: userObjID},
				{Key: "status", Value: PurchaseStatusCompleted},
			}}},
			{primitive.E{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: "courses"},
				{Key: "localField", Value: "courseId"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "course"},
			}}},
			{primitive.E{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$course"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		}

		cursor, err := ms.purchases.Aggregate(sessCtx, pipeline)
		if err != nil {
			return fmt.Errorf("failed to get purchases: %w", err)
		}
		defer func() {
			if err := cursor.Close(sessCtx); err != nil {
				log.Warnw("error closing cursor", "error", err)
			}
		}()

		purchases = []*PurchaseWithCourse{}
		return cursor.All(sessCtx, &purchases)
	})
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// DelPurchaseByPaymentID removes the pending purchase bound to the given
// payment provider session ID. Removing a purchase that doesn't exist (or
// that is already completed) is a no-op, so expired webhooks can be
// re-delivered safely.
func (ms *MongoStorage) DelPurchaseByPaymentID(paymentID string) error {
	if paymentID == "" {
		return ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	// Execute the operation within a transaction
	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"paymentId": paymentID, "status": PurchaseStatusPending}
		_, err := ms.purchases.DeleteOne(sessCtx, filter)
		return err
	})
}

// CompletePurchase marks the purchase bound to the given payment provider
// session ID as completed and applies every side effect of the payment in a
// single transaction: the purchase amount and status are updated, all the
// lectures of the course become visible, and the user and course enrollment
// sets are extended. The enrollment updates use addToSet so re-delivered
// webhooks leave the data unchanged. Returns the completed purchase.
func (ms *MongoStorage) CompletePurchase(paymentID string, amount float64) (*Purchase, error) {
	if paymentID == "" {
		return nil, ErrInvalidData
	}

	// Create a context with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var purchase *Purchase
	err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// find the purchase bound to the session
		result := ms.purchases.FindOne(sessCtx, bson.M{"paymentId": paymentID})
		purchase = &Purchase{}
		if err := result.Decode(purchase); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return err
		}

		// mark the purchase as completed with the amount confirmed by the
		// provider
		purchase.Status = PurchaseStatusCompleted
		purchase.Amount = amount
		purchase.UpdatedAt = time.Now()
		update := bson.M{"$set": bson.M{
			"status":    purchase.Status,
			"amount":    purchase.Amount,
			"updatedAt": purchase.UpdatedAt,
		}}
		if _, err := ms.purchases.UpdateOne(sessCtx, bson.M{"_id": purchase.ID}, update); err != nil {
			return err
		}

		// make all the lectures of the course visible to the buyer
		lecturesFilter := bson.M{"courseId": purchase.CourseID}
		lecturesUpdate := bson.M{"$set": bson.M{"isPreviewFree": true}}
		if _, err := ms.lectures.UpdateMany(sessCtx, lecturesFilter, lecturesUpdate); err != nil {
			return err
		}

		// enroll the user in the course
		userFilter := bson.M{"_id": purchase.UserID}
		userUpdate := bson.M{"$addToSet": bson.M{"enrolledCourses": purchase.CourseID}}
		if _, err := ms.users.UpdateOne(sessCtx, userFilter, userUpdate); err != nil {
			return err
		}

		// and register the user as an enrolled student of the course
		courseFilter := bson.M{"_id": purchase.CourseID}
		courseUpdate := bson.M{"$addToSet": bson.M{"enrolledStudents": purchase.UserID}}
		_, err := ms.courses.UpdateOne(sessCtx, courseFilter, courseUpdate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
