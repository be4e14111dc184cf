// Package notifications defines the notification services used to reach
// users, currently email and SMS.
package notifications

import "context"

type Notification struct {
	ToName    string
	ToAddress string
	ToNumber  string
	ReplyTo   string
	Subject   string
	Body      string
	PlainBody string
}

type NotificationService interface {
	New(conf any) error
	SendNotification(context.Context, *Notification) error
}
