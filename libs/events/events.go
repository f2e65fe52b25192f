// Package events holds the Kafka topics and payloads shared by the API and
// notification services.
package events

import "time"

const (
	TopicUserRegistered   = "bookmycare.user.registered.v1"
	TopicBookingCreated   = "bookmycare.booking.created.v1"
	TopicBookingCancelled = "bookmycare.booking.cancelled.v1"
)

// Topics lists every topic the notification service subscribes to.
func Topics() []string {
	return []string{TopicUserRegistered, TopicBookingCreated, TopicBookingCancelled}
}

type UserRegistered struct {
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Booking is the payload of both booking topics.
type Booking struct {
	BookingID     int64     `json:"booking_id"`
	ProviderID    int64     `json:"provider_id"`
	ProviderName  string    `json:"provider_name"`
	ProviderEmail string    `json:"provider_email"`
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
