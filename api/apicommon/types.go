package apicommon

import (
	"time"

	"github.com/skilldeck/lms-backend/db"
)

// UserInfo is the request to register a new user, also used as the login
// request body.
type UserInfo struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginResponse is the response of the login request which includes the JWT
// token.
type LoginResponse struct {
	Token    string    `json:"token"`
	Expirity time.Time `json:"expirity"`
}

// CheckoutSessionRequest is the request to open a payment checkout session
// for a course.
type CheckoutSessionRequest struct {
	CourseID string `json:"courseId"`
}

// CheckoutSessionResponse carries the checkout session URL the frontend must
// redirect the buyer to.
type CheckoutSessionResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// CourseDetailWithStatus is the response of the course detail query: the
// populated course plus whether the requesting user has a purchase for it.
type CourseDetailWithStatus struct {
	Course    *db.CourseWithDetails `json:"course"`
	Purchased bool                  `json:"purchased"`
}

// PurchasedCourses is the response of the purchased courses query, every
// completed purchase of the user with its course populated.
type PurchasedCourses struct {
	PurchasedCourse []*db.PurchaseWithCourse `json:"purchasedCourse"`
}
