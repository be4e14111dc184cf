package stripe

import (
	"context"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/test"
	stripeapi "github.com/stripe/stripe-go/v81"
)

func TestParseCheckoutSessionFromEvent(t *testing.T) {
	c := qt.New(t)

	event := &stripeapi.Event{
		ID:   "evt_1",
		Type: stripeapi.EventTypeCheckoutSessionCompleted,
		Data: &stripeapi.EventData{
			Raw: json.RawMessage(`{"id":"cs_test_123","amount_total":15030}`),
		},
	}
	session, err := parseCheckoutSessionFromEvent(event)
	c.Assert(err, qt.IsNil)
	c.Assert(session.ID, qt.Equals, "cs_test_123")
	c.Assert(session.AmountTotal, qt.Equals, int64(15030))

	// a session without ID is rejected
	event.Data.Raw = json.RawMessage(`{"amount_total":15030}`)
	_, err = parseCheckoutSessionFromEvent(event)
	c.Assert(err, qt.Not(qt.IsNil))

	// malformed payloads are rejected
	event.Data.Raw = json.RawMessage(`{not json`)
	_, err = parseCheckoutSessionFromEvent(event)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestMemoryEventStore(t *testing.T) {
	c := qt.New(t)

	store := NewMemoryEventStore(0)
	c.Assert(store.EventExists("evt_1"), qt.IsFalse)
	store.MarkProcessed("evt_1")
	c.Assert(store.EventExists("evt_1"), qt.IsTrue)
	c.Assert(store.Size(), qt.Equals, 1)
}

func TestLockManager(t *testing.T) {
	c := qt.New(t)

	lm := NewLockManager()
	unlock := lm.LockSession("cs_1")
	released := make(chan struct{})
	go func() {
		// blocks until the first holder releases
		innerUnlock := lm.LockSession("cs_1")
		innerUnlock()
		close(released)
	}()
	select {
	case <-released:
		c.Fatal("lock acquired while still held")
	default:
	}
	unlock()
	<-released
	lm.CleanupLocks()
}

func TestHandleCheckoutEvents(t *testing.T) {
	c := qt.New(t)

	ctx := context.Background()
	dbContainer, err := test.StartMongoContainer(ctx)
	c.Assert(err, qt.IsNil)
	defer func() {
		c.Assert(dbContainer.Terminate(ctx), qt.IsNil)
	}()

	mongoURI, err := dbContainer.ConnectionString(ctx)
	c.Assert(err, qt.IsNil)

	testDB, err := db.New(mongoURI, test.RandomDatabaseName())
	c.Assert(err, qt.IsNil)
	defer testDB.Close()

	// seed an instructor, a student, a course with one lecture and a pending
	// purchase bound to a checkout session
	instructorID, err := testDB.SetUser(&db.User{
		Email:    "instructor@example.com",
		Password: "f2c57f8d1b4e9a3c",
		Name:     "Instructor",
		Role:     db.InstructorRole,
	})
	c.Assert(err, qt.IsNil)
	studentID, err := testDB.SetUser(&db.User{
		Email:    "student@example.com",
		Password: "f2c57f8d1b4e9a3c",
		Name:     "Student",
		Role:     db.StudentRole,
	})
	c.Assert(err, qt.IsNil)

	instructor, err := testDB.User(instructorID)
	c.Assert(err, qt.IsNil)
	student, err := testDB.User(studentID)
	c.Assert(err, qt.IsNil)

	course := &db.Course{
		Title:     "Mastering Go",
		Category:  "programming",
		Price:     499,
		CreatorID: instructor.ID,
		Published: true,
	}
	_, err = testDB.SetCourse(course)
	c.Assert(err, qt.IsNil)
	lectureID, err := testDB.SetLecture(&db.Lecture{
		CourseID: course.ID,
		Title:    "Introduction",
	})
	c.Assert(err, qt.IsNil)

	_, err = testDB.SetPurchase(&db.Purchase{
		CourseID:  course.ID,
		UserID:    student.ID,
		Amount:    course.Price,
		PaymentID: "cs_test_completed",
	})
	c.Assert(err, qt.IsNil)

	service := &Service{
		db:          testDB,
		eventStore:  NewMemoryEventStore(0),
		lockManager: NewLockManager(),
		config:      &Config{},
	}

	completedEvent := func(sessionID string, amountTotal int64) *stripeapi.Event {
		raw, err := json.Marshal(map[string]any{"id": sessionID, "amount_total": amountTotal})
		c.Assert(err, qt.IsNil)
		return &stripeapi.Event{
			ID:   "evt_" + sessionID,
			Type: stripeapi.EventTypeCheckoutSessionCompleted,
			Data: &stripeapi.EventData{Raw: raw},
		}
	}

	t.Run("Completed", func(_ *testing.T) {
		c.Assert(service.HandleEvent(completedEvent("cs_test_completed", 15030)), qt.IsNil)

		// the purchase holds the amount confirmed by the provider
		purchase, err := testDB.PurchaseByPaymentID("cs_test_completed")
		c.Assert(err, qt.IsNil)
		c.Assert(purchase.Status, qt.Equals, db.PurchaseStatusCompleted)
		c.Assert(purchase.Amount, qt.Equals, 150.30)

		// the lectures became visible and the enrollments were recorded
		lecture, err := testDB.Lecture(lectureID)
		c.Assert(err, qt.IsNil)
		c.Assert(lecture.IsPreviewFree, qt.IsTrue)
		enrolled, err := testDB.UserIsEnrolled(student.ID.Hex(), course.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(enrolled, qt.IsTrue)

		// re-delivery of the same session is harmless
		c.Assert(service.HandleEvent(completedEvent("cs_test_completed", 15030)), qt.IsNil)
		user, err := testDB.User(student.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(user.EnrolledCourses, qt.HasLen, 1)
	})

	t.Run("CompletedUnknownSession", func(_ *testing.T) {
		err := service.HandleEvent(completedEvent("cs_test_unknown", 15030))
		c.Assert(err, qt.Not(qt.IsNil))
		c.Assert(err.Error(), qt.Contains, "purchase not found")
	})

	t.Run("Expired", func(_ *testing.T) {
		_, err := testDB.SetPurchase(&db.Purchase{
			CourseID:  course.ID,
			UserID:    student.ID,
			Amount:    course.Price,
			PaymentID: "cs_test_expired",
		})
		c.Assert(err, qt.IsNil)

		expiredEvent := &stripeapi.Event{
			ID:   "evt_expired",
			Type: stripeapi.EventTypeCheckoutSessionExpired,
			Data: &stripeapi.EventData{Raw: json.RawMessage(`{"id":"cs_test_expired"}`)},
		}
		c.Assert(service.HandleEvent(expiredEvent), qt.IsNil)
		_, err = testDB.PurchaseByPaymentID("cs_test_expired")
		c.Assert(err, qt.Equals, db.ErrNotFound)

		// an expired event for a session with no purchase is a no-op
		expiredEvent.Data.Raw = json.RawMessage(`{"id":"cs_test_gone"}`)
		c.Assert(service.HandleEvent(expiredEvent), qt.IsNil)
	})

	t.Run("UnhandledType", func(_ *testing.T) {
		event := &stripeapi.Event{
			ID:   "evt_other",
			Type: stripeapi.EventType("payment_intent.succeeded"),
			Data: &stripeapi.EventData{Raw: json.RawMessage(`{}`)},
		}
		c.Assert(service.HandleEvent(event), qt.IsNil)
	})
}
