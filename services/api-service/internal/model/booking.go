package model

import "time"

type BookingStatus string

const (
	StatusBooked    BookingStatus = "BOOKED"
	StatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          int64         `json:"id"`
	ProviderID  int64         `json:"providerId"`
	CustomerID  int64         `json:"customerId"`
	Date        Date          `json:"date"`
	TimeSlot    string        `json:"timeSlot"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`
}

func (b Booking) Active() bool {
	return b.Status == StatusBooked
}
