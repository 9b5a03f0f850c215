package model

import (
	"time"
)

// ServiceWindow is how long a booked table stays occupied.
const ServiceWindow = 2 * time.Hour

// Booking reserves seats for GuestNumber people at a restaurant on
// OrderDate, starting at OrderHour and lasting one ServiceWindow.
//
// Fields:
//
//	ID           – primary key identifier.
//	GuestNumber  – party size, always positive.
//	OrderDate    – calendar date of the visit.
//	OrderHour    – wall-clock start of the visit.
//	Allergy      – optional allergy note for the kitchen.
//	RestaurantID – restaurant being booked.
//	UserID       – user who made the booking.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Booking struct {
	ID           uint64    // bookings.id
	GuestNumber  int       // bookings.guest_number
	OrderDate    Date      // bookings.order_date
	OrderHour    TimeOfDay // bookings.order_hour
	Allergy      *string   // bookings.allergy (nullable)
	RestaurantID uint64    // bookings.restaurant_id
	UserID       uint64    // bookings.user_id
	CreatedAt    time.Time // bookings.created_at
	UpdatedAt    time.Time // bookings.updated_at
}

// BookingPatch carries a partial booking update.  Nil fields are left
// untouched.  Applying a patch never re-checks capacity.
type BookingPatch struct {
	GuestNumber *int
	OrderDate   *Date
	OrderHour   *TimeOfDay
	Allergy     *string
}

func (p BookingPatch) Empty() bool {
	return p.GuestNumber == nil && p.OrderDate == nil && p.OrderHour == nil && p.Allergy == nil
}

// Apply copies the set fields of p onto b.
func (p BookingPatch) Apply(b *Booking) {
	if p.GuestNumber != nil {
		b.GuestNumber = *p.GuestNumber
	}
	if p.OrderDate != nil {
		b.OrderDate = *p.OrderDate
	}
	if p.OrderHour != nil {
		b.OrderHour = *p.OrderHour
	}
	if p.Allergy != nil {
		b.Allergy = p.Allergy
	}
}
