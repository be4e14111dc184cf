package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
	"github.com/skilldeck/lms-backend/log"
	"github.com/skilldeck/lms-backend/notifications"
	stripeapi "github.com/stripe/stripe-go/v81"
)

// HandleWebhookEvent processes a webhook event with idempotency
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	// Validate and parse the event
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return errors.ErrWebhookSignature.WithErr(err)
	}

	// Check if event was already processed (idempotency)
	if s.eventStore.EventExists(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}

	// Process the event based on its type
	if err := s.HandleEvent(event); err != nil {
		return err
	}

	// Mark event as processed if successful
	s.eventStore.MarkProcessed(event.ID)

	return nil
}

func (s *Service) HandleEvent(event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(event)
	case stripeapi.EventTypeCheckoutSessionExpired:
		return s.handleCheckoutExpired(event)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// handleCheckoutCompleted processes a completed checkout session: the
// purchase bound to the session is marked completed with the amount confirmed
// by the provider, the lectures of the course become visible and the user is
// enrolled. The database side effects run in a single transaction, then a
// best-effort confirmation is sent.
func (s *Service) handleCheckoutCompleted(event *stripeapi.Event) error {
	session, err := parseCheckoutSessionFromEvent(event)
	if err != nil {
		return errors.ErrStripeWebhookError.WithErr(err)
	}

	// Use per-session locking
	unlock := s.lockManager.LockSession(session.ID)
	defer unlock()

	amount := FromMinorUnit(session.AmountTotal)
	purchase, err := s.db.CompletePurchase(session.ID, amount)
	if err != nil {
		if err == db.ErrNotFound {
			return errors.ErrPurchaseNotFound.Withf("no purchase for session %s", session.ID)
		}
		return errors.ErrStripeWebhookError.WithErr(err)
	}

	log.Infow("stripe webhook: purchase completed",
		"purchase", purchase.ID.Hex(),
		"course", purchase.CourseID.Hex(),
		"user", purchase.UserID.Hex(),
		"amount", purchase.Amount)

	// confirmation failures never fail the webhook, the payment is already
	// settled on the provider side
	s.sendPurchaseConfirmation(purchase)
	return nil
}

// handleCheckoutExpired removes the pending purchase bound to the expired
// session. Nothing happens when no such purchase exists.
func (s *Service) handleCheckoutExpired(event *stripeapi.Event) error {
	session, err := parseCheckoutSessionFromEvent(event)
	if err != nil {
		return errors.ErrStripeWebhookError.WithErr(err)
	}

	// Use per-session locking
	unlock := s.lockManager.LockSession(session.ID)
	defer unlock()

	if err := s.db.DelPurchaseByPaymentID(session.ID); err != nil {
		return errors.ErrStripeWebhookError.WithErr(err)
	}

	log.Infow("stripe webhook: expired session discarded", "session", session.ID)
	return nil
}

// sendPurchaseConfirmation notifies the buyer about the completed purchase
// through the configured channels. Failures are logged and swallowed.
func (s *Service) sendPurchaseConfirmation(purchase *db.Purchase) {
	if s.mail == nil && s.sms == nil {
		return
	}

	user, err := s.db.User(purchase.UserID.Hex())
	if err != nil {
		log.Warnw("stripe webhook: cannot load buyer for confirmation", "error", err)
		return
	}
	course, err := s.db.Course(purchase.CourseID.Hex())
	if err != nil {
		log.Warnw("stripe webhook: cannot load course for confirmation", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := fmt.Sprintf("Hi %s, your purchase of %q for %.2f is confirmed. Happy learning!",
		user.Name, course.Title, purchase.Amount)

	if s.mail != nil && user.Email != "" {
		notification := &notifications.Notification{
			ToName:    user.Name,
			ToAddress: user.Email,
			Subject:   "Course purchase confirmed",
			PlainBody: body,
			Body:      body,
		}
		if err := s.mail.SendNotification(ctx, notification); err != nil {
			log.Warnw("stripe webhook: failed to send confirmation email",
				"error", err, "user", user.ID.Hex())
		}
	}
	if s.sms != nil && user.Phone != "" {
		notification := &notifications.Notification{
			ToName:   user.Name,
			ToNumber: user.Phone,
			Body:     body,
		}
		if err := s.sms.SendNotification(ctx, notification); err != nil {
			log.Warnw("stripe webhook: failed to send confirmation sms",
				"error", err, "user", user.ID.Hex())
		}
	}
}

// parseCheckoutSessionFromEvent extracts the checkout session from a webhook event
func parseCheckoutSessionFromEvent(event *stripeapi.Event) (*stripeapi.CheckoutSession, error) {
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session from event: %v", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("checkout session event missing session id")
	}
	return &session, nil
}
