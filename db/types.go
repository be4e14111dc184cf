package db

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	UserRole       string
	CourseLevel    string
	PurchaseStatus string
)

// User represents a platform account, either a student or an instructor.
type User struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id"`
	Email           string               `json:"email" bson:"email"`
	Password        string               `json:"password,omitempty" bson:"password"`
	Name            string               `json:"name" bson:"name"`
	Phone           string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Role            UserRole             `json:"role" bson:"role"`
	EnrolledCourses []primitive.ObjectID `json:"enrolledCourses" bson:"enrolledCourses"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Course holds the course metadata plus the references to its lectures and
// the students enrolled on it.
type Course struct {
	ID               primitive.ObjectID   `json:"id" bson:"_id"`
	Title            string               `json:"title" bson:"title"`
	Subtitle         string               `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Description      string               `json:"description,omitempty" bson:"description,omitempty"`
	Category         string               `json:"category" bson:"category"`
	Level            CourseLevel          `json:"level,omitempty" bson:"level,omitempty"`
	Price            float64              `json:"price" bson:"price"`
	Thumbnail        string               `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	CreatorID        primitive.ObjectID   `json:"creatorId" bson:"creatorId"`
	LectureIDs       []primitive.ObjectID `json:"lectures" bson:"lectures"`
	EnrolledStudents []primitive.ObjectID `json:"enrolledStudents" bson:"enrolledStudents"`
	Published        bool                 `json:"published" bson:"published"`
	CreatedAt        time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// CourseWithDetails is a Course with its creator and lecture documents
// populated by aggregation. The populated lectures shadow the raw lecture id
// list of the embedded Course in the JSON output.
type CourseWithDetails struct {
	Course   `bson:",inline"`
	Creator  *User      `json:"creator,omitempty" bson:"creator,omitempty"`
	Lectures []*Lecture `json:"lectures" bson:"lectureDetails"`
}

// Lecture is a single video lecture of a course. Lectures flagged with
// IsPreviewFree are visible to users that have not purchased the course.
type Lecture struct {
	ID            primitive.ObjectID `json:"id" bson:"_id"`
	CourseID      primitive.ObjectID `json:"courseId" bson:"courseId"`
	Title         string             `json:"title" bson:"title"`
	VideoURL      string             `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	IsPreviewFree bool               `json:"isPreviewFree" bson:"isPreviewFree"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Purchase ties a user to a course through a payment provider session.
// A purchase is created as pending when the checkout session is opened and
// becomes completed when the provider confirms the payment.
type Purchase struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	CourseID  primitive.ObjectID `json:"courseId" bson:"courseId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Amount    float64            `json:"amount" bson:"amount"`
	Status    PurchaseStatus     `json:"status" bson:"status"`
	PaymentID string             `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// PurchaseWithCourse is a Purchase with its course document populated by
// aggregation.
type PurchaseWithCourse struct {
	Purchase `bson:",inline"`
	Course   *Course `json:"course" bson:"course"`
}

// The Object entity represents a generic object stored in the database
// intended for s3-like storage.
type Object struct {
	ID          string    `json:"id" bson:"_id"`
	Data        []byte    `json:"data" bson:"data"`
	UserID      string    `json:"userId" bson:"userId"`
	ContentType string    `json:"contentType" bson:"contentType"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
