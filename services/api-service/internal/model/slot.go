package model

import "time"

// Slot is a provider's declared availability. IsBooked is derived from the
// bookings table on read and is never stored.
type Slot struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerId"`
	Date       Date      `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	IsBooked   bool      `json:"isBooked"`
	CreatedAt  time.Time `json:"createdAt"`
}
