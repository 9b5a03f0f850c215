// Package availability decides whether a restaurant can seat another party
// within a two-hour service window.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// MessageAvailable is the verdict message of an admitted request.
const MessageAvailable = "Places available"

// Request describes a prospective booking.
type Request struct {
	OrderDate   model.Date
	OrderHour   model.TimeOfDay
	GuestNumber int
}

// Verdict is the outcome of a check.  RemainingCapacity is set only when the
// request is admitted; a rejection reports the free seats in Message.
type Verdict struct {
	Available         bool   `json:"available"`
	Message           string `json:"message"`
	RemainingCapacity *int   `json:"remainingCapacity,omitempty"`
}

// Overlaps reports whether an existing booking at existing is inside the
// window opened by a request at requested.  Both bounds are exclusive, so a
// booking exactly one ServiceWindow away does not count.  The lower bound is
// plain seconds and may be negative, so early-morning requests count every
// booking since midnight.  The upper bound is computed on a 24-hour clock and
// compared without handling the wrap, which means a window running past
// midnight matches nothing.
func Overlaps(requested, existing model.TimeOfDay) bool {
	lower := int(requested) - int(model.ServiceWindow/time.Second)
	upper := requested.Add(model.ServiceWindow)
	return lower < int(existing) && existing < upper
}

// Evaluate applies the capacity rule to a snapshot of bookings.  Bookings on
// another date are ignored, so the snapshot may be wider than one day.
func Evaluate(maxGuest int, existing []model.Booking, req Request) Verdict {
	total := req.GuestNumber
	for _, b := range existing {
		if b.OrderDate != req.OrderDate || !Overlaps(req.OrderHour, b.OrderHour) {
			continue
		}
		total += b.GuestNumber
	}
	if total > maxGuest {
		return Verdict{
			Available: false,
			Message:   fmt.Sprintf("Capacity exceeded. Remaining places: %d", maxGuest-(total-req.GuestNumber)),
		}
	}
	remaining := maxGuest - total
	return Verdict{Available: true, Message: MessageAvailable, RemainingCapacity: &remaining}
}

// BookingLister returns every booking of a restaurant on a date.
type BookingLister interface {
	ListByRestaurantAndDate(ctx context.Context, restaurantID uint64, date model.Date) ([]model.Booking, error)
}

// Checker loads the day's bookings from a store and evaluates a request.
type Checker struct {
	bookings BookingLister
}

func NewChecker(bookings BookingLister) *Checker {
	return &Checker{bookings: bookings}
}

// Check evaluates req against restaurant.  It performs no writes.
func (c *Checker) Check(ctx context.Context, restaurant *model.Restaurant, req Request) (Verdict, error) {
	existing, err := c.bookings.ListByRestaurantAndDate(ctx, restaurant.ID, req.OrderDate)
	if err != nil {
		return Verdict{}, fmt.Errorf("list bookings for restaurant %d: %w", restaurant.ID, err)
	}
	return Evaluate(restaurant.MaxGuest, existing, req), nil
}
