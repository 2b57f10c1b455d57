package domain

import "time"

type DeliveryMethod string

const (
	DeliveryInApp DeliveryMethod = "in-app"
	DeliveryEmail DeliveryMethod = "email"
)

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationQueued NotificationStatus = "queued"
	NotificationFailed NotificationStatus = "failed"
)

type Notification struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	OrderID        string             `json:"order_id"`
	Message        string             `json:"message"`
	DeliveryMethod DeliveryMethod     `json:"delivery_method"`
	Status         NotificationStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}
