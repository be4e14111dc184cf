package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/skilldeck/lms-backend/api/apicommon"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/errors"
)

// maxWebhookBodySize is the maximum size of a webhook payload accepted from
// the payment provider.
const maxWebhookBodySize = int64(65536)

// createCheckoutSessionHandler opens a payment checkout session for the
// course requested in the body and returns the session URL the frontend must
// redirect the buyer to. A pending purchase bound to the session is persisted.
func (a *API) createCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	req := &apicommon.CheckoutSessionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.CourseID == "" {
		errors.ErrMalformedBody.With("courseId is required").Write(w)
		return
	}
	sessionURL, err := a.stripe.CreateCourseCheckout(user, req.CourseID)
	if err != nil {
		if apiErr, ok := err.(errors.Error); ok {
			apiErr.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CheckoutSessionResponse{
		Success: true,
		URL:     sessionURL,
	})
}

// stripeWebhookHandler receives the asynchronous events of the payment
// provider. The payload signature is verified before any processing, and the
// provider only gets a 200 back once the event side effects are committed.
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		errors.ErrMalformedBody.Withf("cannot read webhook payload: %v", err).Write(w)
		return
	}
	signature := r.Header.Get("Stripe-Signature")
	if err := a.stripe.HandleWebhookEvent(payload, signature); err != nil {
		if apiErr, ok := err.(errors.Error); ok {
			apiErr.Write(w)
			return
		}
		errors.ErrStripeWebhookError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}

// purchasedCoursesHandler returns every completed purchase of the current
// user with its course populated.
func (a *API) purchasedCoursesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	purchases, err := a.db.CompletedPurchasesWithCourses(user.ID.Hex())
	if err != nil {
		errors.ErrInternalStorageError.WithErr(err).Write(w)
		return
	}
	if purchases == nil {
		purchases = []*db.PurchaseWithCourse{}
	}
	apicommon.HTTPWriteJSON(w, &apicommon.PurchasedCourses{
		PurchasedCourse: purchases,
	})
}
