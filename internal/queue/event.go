// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// BookingCreatedQueue is the durable queue carrying BookingCreatedEvent.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published when a booking passes the availability
// check and is stored.  It contains enough information for downstream
// consumers to log or notify without querying the primary database.
type BookingCreatedEvent struct {
	EventID        string  `json:"event_id"`
	BookingID      uint64  `json:"booking_id"`
	UserID         uint64  `json:"user_id"`
	RestaurantID   uint64  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	GuestNumber    int     `json:"guest_number"`
	OrderDate      string  `json:"order_date"`
	OrderHour      string  `json:"order_hour"`
	Allergy        *string `json:"allergy,omitempty"`
	// RemainingCapacity is what the window had left after this booking.
	RemainingCapacity *int   `json:"remaining_capacity,omitempty"`
	CreatedAt         string `json:"created_at"`
}

// NewBookingCreatedEvent builds the event for a stored booking with a fresh
// event ID.
func NewBookingCreatedEvent(b *model.Booking, restaurant *model.Restaurant, remaining *int) BookingCreatedEvent {
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return BookingCreatedEvent{
		EventID:           uuid.NewString(),
		BookingID:         b.ID,
		UserID:            b.UserID,
		RestaurantID:      b.RestaurantID,
		RestaurantName:    restaurant.Name,
		GuestNumber:       b.GuestNumber,
		OrderDate:         b.OrderDate.String(),
		OrderHour:         b.OrderHour.String(),
		Allergy:           b.Allergy,
		RemainingCapacity: remaining,
		CreatedAt:         created.UTC().Format(time.RFC3339),
	}
}
