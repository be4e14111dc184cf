// Package db provides database operations for the e-learning backend,
// handling storage and retrieval of users, courses, lectures and the
// purchases that tie them together.
package db

type Database interface {
	// basic db management operations
	Close()
	Reset() error
	// user methods
	UserByEmail(string) (*User, error)
	SetUser(*User) (string, error)
	DelUser(*User) error
	// course methods
	Course(string) (*Course, error)
	SetCourse(*Course) (string, error)
	DelCourse(string) error
	// purchase methods
	SetPurchase(*Purchase) (string, error)
	PurchaseByPaymentID(string) (*Purchase, error)
	DelPurchaseByPaymentID(string) error
	CompletePurchase(string, float64) (*Purchase, error)
}
