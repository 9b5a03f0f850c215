// Package service holds the booking flow: availability check, creation
// under the configured consistency mode and event publication.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/restaurant-booking/internal/availability"
	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/queue"
)

// publishTimeout bounds event delivery after the booking is stored.
const publishTimeout = 3 * time.Second

// CapacityError is returned by Create when the restaurant cannot seat the
// party.  Verdict.Message carries the remaining places.
type CapacityError struct {
	Verdict availability.Verdict
}

func (e *CapacityError) Error() string { return "booking not available: " + e.Verdict.Message }

// BookingStore is the persistence the booking flow needs.
type BookingStore interface {
	availability.BookingLister
	Create(ctx context.Context, b *model.Booking) error
	CreateIfAdmitted(ctx context.Context, b *model.Booking, admit func(*model.Restaurant, []model.Booking) bool) (bool, error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context) ([]*model.Booking, error)
	ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*model.Booking, error)
	Update(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

type RestaurantFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// BookingService coordinates the checker with the stores.
type BookingService struct {
	bookings    BookingStore
	restaurants RestaurantFinder
	users       UserFinder
	checker     *availability.Checker
	events      EventPublisher
	consistency string
	log         *slog.Logger
}

// NewBookingService wires the flow.  A nil events publisher disables
// publication; an unknown consistency mode behaves as config.ConsistencyNone.
func NewBookingService(bookings BookingStore, restaurants RestaurantFinder, users UserFinder,
	events EventPublisher, consistency string, log *slog.Logger) *BookingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingService{
		bookings:    bookings,
		restaurants: restaurants,
		users:       users,
		checker:     availability.NewChecker(bookings),
		events:      events,
		consistency: config.ParseConsistency(consistency),
		log:         log,
	}
}

// CheckInput is the payload of an explicit availability check.
type CheckInput struct {
	RestaurantID uint64
	OrderDate    model.Date
	OrderHour    model.TimeOfDay
	GuestNumber  int
}

// Check resolves the restaurant and evaluates the request without writing.
func (s *BookingService) Check(ctx context.Context, in CheckInput) (availability.Verdict, error) {
	rest, err := s.restaurants.GetByID(ctx, in.RestaurantID)
	if err != nil {
		return availability.Verdict{}, err
	}
	return s.checker.Check(ctx, rest, availability.Request{
		OrderDate:   in.OrderDate,
		OrderHour:   in.OrderHour,
		GuestNumber: in.GuestNumber,
	})
}

// CreateInput is the payload of a booking request.
type CreateInput struct {
	RestaurantID uint64
	UserID       uint64
	OrderDate    model.Date
	OrderHour    model.TimeOfDay
	GuestNumber  int
	Allergy      *string
}

// Resolve returns the not-found error of an unknown restaurant or user,
// restaurant first.
func (s *BookingService) Resolve(ctx context.Context, restaurantID, userID uint64) error {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return err
	}
	_, err := s.users.GetByID(ctx, userID)
	return err
}

// Create checks availability and stores the booking.  It returns the
// restaurant or user not-found error from the stores, or *CapacityError
// when the party does not fit.
func (s *BookingService) Create(ctx context.Context, in CreateInput) (*model.Booking, availability.Verdict, error) {
	rest, err := s.restaurants.GetByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, availability.Verdict{}, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, availability.Verdict{}, err
	}

	b := &model.Booking{
		GuestNumber:  in.GuestNumber,
		OrderDate:    in.OrderDate,
		OrderHour:    in.OrderHour,
		Allergy:      in.Allergy,
		RestaurantID: rest.ID,
		UserID:       in.UserID,
	}
	req := availability.Request{OrderDate: in.OrderDate, OrderHour: in.OrderHour, GuestNumber: in.GuestNumber}

	var verdict availability.Verdict
	if s.consistency == config.ConsistencySerializable {
		_, err = s.bookings.CreateIfAdmitted(ctx, b, func(locked *model.Restaurant, existing []model.Booking) bool {
			rest = locked
			verdict = availability.Evaluate(locked.MaxGuest, existing, req)
			return verdict.Available
		})
		if err != nil {
			return nil, verdict, fmt.Errorf("create booking: %w", err)
		}
	} else {
		verdict, err = s.checker.Check(ctx, rest, req)
		if err != nil {
			return nil, verdict, err
		}
		if verdict.Available {
			if err := s.bookings.Create(ctx, b); err != nil {
				return nil, verdict, fmt.Errorf("create booking: %w", err)
			}
		}
	}
	if !verdict.Available {
		s.log.Info("booking rejected", "restaurant_id", rest.ID, "date", in.OrderDate.String(),
			"hour", in.OrderHour.String(), "guests", in.GuestNumber, "reason", verdict.Message)
		return nil, verdict, &CapacityError{Verdict: verdict}
	}

	s.log.Info("booking created", "booking_id", b.ID, "restaurant_id", rest.ID, "guests", b.GuestNumber,
		"consistency", s.consistency)
	s.publishCreated(ctx, b, rest, verdict.RemainingCapacity)
	return b, verdict, nil
}

func (s *BookingService) publishCreated(ctx context.Context, b *model.Booking, rest *model.Restaurant, remaining *int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.NewBookingCreatedEvent(b, rest, remaining)
	if err := s.events.PublishBookingCreated(ctx, ev); err != nil {
		s.log.Warn("booking event not published", "booking_id", b.ID, "event_id", ev.EventID, "error", err)
	}
}

// Update applies a partial edit.  Capacity is not re-checked.
func (s *BookingService) Update(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	return s.bookings.Update(ctx, id, p)
}

func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.List(ctx)
}

// ListByRestaurant fails with the restaurant not-found error when the
// restaurant does not exist.
func (s *BookingService) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*model.Booking, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.bookings.ListByRestaurant(ctx, restaurantID)
}

func (s *BookingService) Delete(ctx context.Context, id uint64) error {
	return s.bookings.Delete(ctx, id)
}
