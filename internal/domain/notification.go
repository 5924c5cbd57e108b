package domain

import "time"

type NotificationType string

const (
	NotificationRentalRequest   NotificationType = "RENTAL_REQUEST"
	NotificationRentalStatus    NotificationType = "RENTAL_STATUS"
	NotificationReviewReminder  NotificationType = "REVIEW_REMINDER"
	NotificationPendingReminder NotificationType = "PENDING_REMINDER"
	NotificationKYC             NotificationType = "KYC"
	NotificationPlan            NotificationType = "PLAN"
	NotificationMessage         NotificationType = "MESSAGE"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Type       NotificationType  `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}
