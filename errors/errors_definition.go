// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in, that code was used in the past and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	// Authentication errors (401)
	ErrUnauthorized = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}

	// Validation errors (400)
	ErrEmailMalformed       = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid email format")}
	ErrPasswordTooShort     = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("password must be at least 8 characters")}
	ErrMalformedBody        = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrInvalidUserData      = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid user information provided")}
	ErrMalformedURLParam    = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrNoCheckoutSessionURL = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("checkout session has no payment URL")}
	ErrStorageInvalidObject = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid storage object or parameters")}
	ErrWebhookSignature     = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("webhook signature verification failed"), LogLevel: "info"}
	ErrInvalidData          = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid data provided")}

	// Not found errors (404)
	ErrCourseNotFound   = Error{Code: 40010, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("course not found")}
	ErrPurchaseNotFound = Error{Code: 40011, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("purchase not found")}
	ErrUserNotFound     = Error{Code: 40012, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("user not found")}

	// Conflict errors (409)
	ErrDuplicateConflict = Error{Code: 40901, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("resource already exists")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrStripeError                = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: payment processing failed"), LogLevel: "error"}
	ErrStripeWebhookError         = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: stripe webhook failed"), LogLevel: "error"}
	ErrInternalStorageError       = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: storage operation failed"), LogLevel: "error"}
)
