// Package stripe provides integration with the Stripe payment service,
// handling course checkout sessions and their webhook events.
package stripe

import (
	"fmt"

	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
	"github.com/skilldeck/lms-backend/notifications"
)

// Service provides the main business logic for Stripe operations
type Service struct {
	client      *Client
	db          *db.MongoStorage
	mail        notifications.NotificationService
	sms         notifications.NotificationService
	eventStore  *MemoryEventStore
	lockManager *LockManager
	config      *Config
}

// NewService creates a new Stripe service. The mail and sms services are
// optional, when nil no purchase confirmation is sent through that channel.
func NewService(config *Config, database *db.MongoStorage,
	mail, sms notifications.NotificationService,
) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	cfg := config.withDefaults()

	return &Service{
		client:      NewClient(&cfg),
		db:          database,
		mail:        mail,
		sms:         sms,
		eventStore:  NewMemoryEventStore(0),
		lockManager: NewLockManager(),
		config:      &cfg,
	}, nil
}

// CreateCourseCheckout opens a payment checkout session for the given course
// on behalf of the given user and returns the session URL the frontend must
// redirect to. A pending purchase bound to the session is persisted, but only
// once the provider has returned a usable session, so a provider failure
// leaves no purchase behind.
func (s *Service) CreateCourseCheckout(user *db.User, courseID string) (string, error) {
	course, err := s.db.Course(courseID)
	if err != nil {
		if err == db.ErrNotFound || err == db.ErrInvalidData {
			return "", errors.ErrCourseNotFound.Withf("course %s", courseID)
		}
		return "", errors.ErrGenericInternalServerError.WithErr(err)
	}

	session, err := s.client.CreateCheckoutSession(&CheckoutSessionParams{
		CourseID:    course.ID.Hex(),
		CourseTitle: course.Title,
		Thumbnail:   course.Thumbnail,
		UnitAmount:  MinorUnitAmount(course.Price, s.config.ExchangeDivisor),
		UserID:      user.ID.Hex(),
		SuccessURL:  fmt.Sprintf("%s/course-progress/%s", s.config.WebAppURL, course.ID.Hex()),
		CancelURL:   fmt.Sprintf("%s/course-detail/%s", s.config.WebAppURL, course.ID.Hex()),
	})
	if err != nil {
		return "", errors.ErrStripeError.WithErr(err)
	}
	if session.URL == "" {
		return "", errors.ErrNoCheckoutSessionURL
	}

	// persist the pending purchase, bound to the session through its ID
	purchase := &db.Purchase{
		CourseID:  course.ID,
		UserID:    user.ID,
		Amount:    course.Price,
		Status:    db.PurchaseStatusPending,
		PaymentID: session.ID,
	}
	if _, err := s.db.SetPurchase(purchase); err != nil {
		return "", errors.ErrGenericInternalServerError.WithErr(err)
	}

	return session.URL, nil
}
