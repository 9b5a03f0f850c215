package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/availability"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

// BookingService is implemented by *service.BookingService.
type BookingService interface {
	Check(ctx context.Context, in service.CheckInput) (availability.Verdict, error)
	Resolve(ctx context.Context, restaurantID, userID uint64) error
	Create(ctx context.Context, in service.CreateInput) (*model.Booking, availability.Verdict, error)
	Update(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error)
	Get(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context) ([]*model.Booking, error)
	ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

// BookingHandler serves /api/booking and /api/restaurant/:id/booking.
type BookingHandler struct {
	Bookings BookingService
	Log      *slog.Logger
}

func NewBookingHandler(s BookingService, log *slog.Logger) *BookingHandler {
	return &BookingHandler{Bookings: s, Log: log}
}

type createBookingReq struct {
	GuestNumber  *int    `json:"guestNumber" validate:"required,gt=0"`
	OrderDate    string  `json:"orderDate" validate:"required"`
	OrderHour    string  `json:"orderHour" validate:"required"`
	Allergy      *string `json:"allergy" validate:"omitempty,max=255"`
	RestaurantID *uint64 `json:"restaurantId" validate:"required,gt=0"`
	UserID       *uint64 `json:"userId" validate:"omitempty,gt=0"`
}

type checkReq struct {
	GuestNumber  *int    `json:"guestNumber" validate:"required,gt=0"`
	OrderDate    string  `json:"orderDate" validate:"required"`
	OrderHour    string  `json:"orderHour" validate:"required"`
	RestaurantID *uint64 `json:"restaurantId" validate:"required,gt=0"`
}

type updateBookingReq struct {
	GuestNumber *int    `json:"guestNumber" validate:"omitempty,gt=0"`
	OrderDate   *string `json:"orderDate"`
	OrderHour   *string `json:"orderHour"`
	Allergy     *string `json:"allergy" validate:"omitempty,max=255"`
}

// Create checks availability and stores the booking.  userId defaults to
// the caller when omitted.  An unknown restaurant or user is reported before
// a malformed date or hour.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	var (
		userID uint64
		err    error
	)
	if req.UserID != nil {
		userID = *req.UserID
	} else if userID, err = currentUser(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Bookings.Resolve(ctx, *req.RestaurantID, userID); err != nil {
		return storeError(c, h.Log, err)
	}
	date, err := parseDate(req.OrderDate)
	if err != nil {
		return badRequest(c, err.Error())
	}
	hour, err := parseHour(req.OrderHour)
	if err != nil {
		return badRequest(c, err.Error())
	}

	b, _, err := h.Bookings.Create(ctx, service.CreateInput{
		RestaurantID: *req.RestaurantID,
		UserID:       userID,
		OrderDate:    date,
		OrderHour:    hour,
		GuestNumber:  *req.GuestNumber,
		Allergy:      req.Allergy,
	})
	if err != nil {
		var capErr *service.CapacityError
		if errors.As(err, &capErr) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "No places available", "details": capErr.Verdict.Message})
		}
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Booking created successfully", "booking": toBooking(b)})
}

// CheckAvailability evaluates a request without storing anything.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var req checkReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	date, err := parseDate(req.OrderDate)
	if err != nil {
		return badRequest(c, err.Error())
	}
	hour, err := parseHour(req.OrderHour)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	verdict, err := h.Bookings.Check(ctx, service.CheckInput{
		RestaurantID: *req.RestaurantID,
		OrderDate:    date,
		OrderHour:    hour,
		GuestNumber:  *req.GuestNumber,
	})
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, verdict)
}

func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	bs, err := h.Bookings.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(bs, toBooking))
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	b, err := h.Bookings.Get(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toBooking(b))
}

// Update edits the given fields.  The new values are not checked against
// capacity.
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateBookingReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	patch := model.BookingPatch{GuestNumber: req.GuestNumber, Allergy: req.Allergy}
	if req.OrderDate != nil {
		d, err := parseDate(*req.OrderDate)
		if err != nil {
			return badRequest(c, err.Error())
		}
		patch.OrderDate = &d
	}
	if req.OrderHour != nil {
		t, err := parseHour(*req.OrderHour)
		if err != nil {
			return badRequest(c, err.Error())
		}
		patch.OrderHour = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	b, err := h.Bookings.Update(ctx, id, patch)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking updated successfully", "booking": toBooking(b)})
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Bookings.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByRestaurant lists every booking of one restaurant, 404 when the
// restaurant does not exist.
func (h *BookingHandler) ListByRestaurant(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	bs, err := h.Bookings.ListByRestaurant(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(bs, toBooking))
}
