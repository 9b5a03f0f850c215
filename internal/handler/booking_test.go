package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/availability"
	"github.com/iliyamo/restaurant-booking/internal/logger"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

// fakeBookings implements BookingService with overridable funcs.
type fakeBookings struct {
	resolve func(restaurantID, userID uint64) error
	check  func(service.CheckInput) (availability.Verdict, error)
	create func(service.CreateInput) (*model.Booking, availability.Verdict, error)
	update func(uint64, model.BookingPatch) (*model.Booking, error)
	stored map[uint64]*model.Booking
}

func (f *fakeBookings) Resolve(_ context.Context, restaurantID, userID uint64) error {
	if f.resolve == nil {
		return nil
	}
	return f.resolve(restaurantID, userID)
}

func (f *fakeBookings) Check(_ context.Context, in service.CheckInput) (availability.Verdict, error) {
	return f.check(in)
}

func (f *fakeBookings) Create(_ context.Context, in service.CreateInput) (*model.Booking, availability.Verdict, error) {
	return f.create(in)
}

func (f *fakeBookings) Update(_ context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	return f.update(id, p)
}

func (f *fakeBookings) Get(_ context.Context, id uint64) (*model.Booking, error) {
	if b, ok := f.stored[id]; ok {
		return b, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) List(context.Context) ([]*model.Booking, error) {
	out := []*model.Booking{}
	for _, b := range f.stored {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookings) ListByRestaurant(_ context.Context, restaurantID uint64) ([]*model.Booking, error) {
	if restaurantID != 1 {
		return nil, repository.ErrRestaurantNotFound
	}
	return f.List(context.Background())
}

func (f *fakeBookings) Delete(_ context.Context, id uint64) error {
	if _, ok := f.stored[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(f.stored, id)
	return nil
}

// asUser stands in for TokenAuth.
func asUser(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserID, id)
			c.Set(middleware.ContextRoles, []string{model.RoleUser})
			return next(c)
		}
	}
}

func bookingServer(f *fakeBookings) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewBookingHandler(f, logger.Discard())
	g := e.Group("/api", asUser(7))
	g.POST("/booking", h.Create)
	g.POST("/booking/check-availability", h.CheckAvailability)
	g.GET("/booking", h.List)
	g.GET("/booking/:id", h.Get)
	g.PUT("/booking/:id", h.Update)
	g.DELETE("/booking/:id", h.Delete)
	g.GET("/restaurant/:id/booking", h.ListByRestaurant)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var visit = model.Date{Year: 2025, Month: time.October, Day: 15}

func intp(v int) *int { return &v }

func TestBookingCreate_Created(t *testing.T) {
	var got service.CreateInput
	f := &fakeBookings{create: func(in service.CreateInput) (*model.Booking, availability.Verdict, error) {
		got = in
		return &model.Booking{
			ID: 3, GuestNumber: in.GuestNumber, OrderDate: in.OrderDate, OrderHour: in.OrderHour,
			RestaurantID: in.RestaurantID, UserID: in.UserID,
		}, availability.Verdict{Available: true, Message: availability.MessageAvailable, RemainingCapacity: intp(0)}, nil
	}}

	rec := do(bookingServer(f), http.MethodPost, "/api/booking",
		`{"guestNumber":50,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Booking created successfully","booking":{
		"id":3,"guestNumber":50,"orderDate":"2025-10-15","orderHour":"19:00",
		"allergy":null,"restaurantId":1,"userId":7}}`, rec.Body.String())
	assert.Equal(t, uint64(7), got.UserID, "defaults to the caller")
	assert.Equal(t, model.Clock(19, 0, 0), got.OrderHour)
}

func TestBookingCreate_ExplicitUser(t *testing.T) {
	var got service.CreateInput
	f := &fakeBookings{create: func(in service.CreateInput) (*model.Booking, availability.Verdict, error) {
		got = in
		return &model.Booking{ID: 1, UserID: in.UserID}, availability.Verdict{Available: true}, nil
	}}
	rec := do(bookingServer(f), http.MethodPost, "/api/booking",
		`{"guestNumber":2,"orderDate":"2025-10-15","orderHour":"12:00","restaurantId":1,"userId":12}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(12), got.UserID)
}

func TestBookingCreate_CapacityConflict(t *testing.T) {
	f := &fakeBookings{create: func(service.CreateInput) (*model.Booking, availability.Verdict, error) {
		v := availability.Verdict{Message: "Capacity exceeded. Remaining places: 40"}
		return nil, v, &service.CapacityError{Verdict: v}
	}}
	rec := do(bookingServer(f), http.MethodPost, "/api/booking",
		`{"guestNumber":41,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"No places available","details":"Capacity exceeded. Remaining places: 40"}`, rec.Body.String())
}

func TestBookingCreate_NotFound(t *testing.T) {
	f := &fakeBookings{create: func(service.CreateInput) (*model.Booking, availability.Verdict, error) {
		return nil, availability.Verdict{}, repository.ErrRestaurantNotFound
	}}
	rec := do(bookingServer(f), http.MethodPost, "/api/booking",
		`{"guestNumber":2,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":99}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"restaurant not found"}`, rec.Body.String())
}

func TestBookingCreate_UnknownRestaurantBeforeBadDate(t *testing.T) {
	f := &fakeBookings{
		resolve: func(restaurantID, userID uint64) error {
			if restaurantID != 1 {
				return repository.ErrRestaurantNotFound
			}
			if userID != 7 {
				return repository.ErrUserNotFound
			}
			return nil
		},
		create: func(service.CreateInput) (*model.Booking, availability.Verdict, error) {
			t.Fatal("service must not be called")
			return nil, availability.Verdict{}, nil
		},
	}
	e := bookingServer(f)

	rec := do(e, http.MethodPost, "/api/booking",
		`{"guestNumber":2,"orderDate":"someday","orderHour":"19:00","restaurantId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"restaurant not found"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/booking",
		`{"guestNumber":2,"orderDate":"2025-10-15","orderHour":"late","restaurantId":1,"userId":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/booking",
		`{"guestNumber":2,"orderDate":"someday","orderHour":"19:00","restaurantId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingCreate_BadInput(t *testing.T) {
	f := &fakeBookings{create: func(service.CreateInput) (*model.Booking, availability.Verdict, error) {
		t.Fatal("service must not be called")
		return nil, availability.Verdict{}, nil
	}}
	e := bookingServer(f)

	tests := []struct {
		name, body, want string
	}{
		{"missing guests", `{"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`, "guestNumber is required"},
		{"zero guests", `{"guestNumber":0,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`, "guestNumber must be at least 1"},
		{"missing restaurant", `{"guestNumber":2,"orderDate":"2025-10-15","orderHour":"19:00"}`, "restaurantId is required"},
		{"bad date", `{"guestNumber":2,"orderDate":"15/10/2025","orderHour":"19:00","restaurantId":1}`, "invalid date format"},
		{"bad hour", `{"guestNumber":2,"orderDate":"2025-10-15","orderHour":"7pm","restaurantId":1}`, "invalid time format"},
		{"not json", `{`, "invalid body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/booking", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestBookingCheckAvailability(t *testing.T) {
	f := &fakeBookings{check: func(in service.CheckInput) (availability.Verdict, error) {
		assert.Equal(t, uint64(1), in.RestaurantID)
		assert.Equal(t, 10, in.GuestNumber)
		return availability.Verdict{Available: true, Message: availability.MessageAvailable, RemainingCapacity: intp(40)}, nil
	}}
	rec := do(bookingServer(f), http.MethodPost, "/api/booking/check-availability",
		`{"guestNumber":10,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":true,"message":"Places available","remainingCapacity":40}`, rec.Body.String())
}

func TestBookingCheckAvailability_Rejected(t *testing.T) {
	f := &fakeBookings{check: func(service.CheckInput) (availability.Verdict, error) {
		return availability.Verdict{Message: "Capacity exceeded. Remaining places: 15"}, nil
	}}
	rec := do(bookingServer(f), http.MethodPost, "/api/booking/check-availability",
		`{"guestNumber":35,"orderDate":"2025-10-15","orderHour":"19:00","restaurantId":1}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":false,"message":"Capacity exceeded. Remaining places: 15"}`, rec.Body.String())
}

func TestBookingUpdate_PartialPatch(t *testing.T) {
	var got model.BookingPatch
	f := &fakeBookings{update: func(id uint64, p model.BookingPatch) (*model.Booking, error) {
		got = p
		b := &model.Booking{ID: id, GuestNumber: 4, OrderDate: visit, OrderHour: model.Clock(19, 0, 0), RestaurantID: 1, UserID: 7}
		p.Apply(b)
		return b, nil
	}}
	rec := do(bookingServer(f), http.MethodPut, "/api/booking/5", `{"orderHour":"20:30"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, got.GuestNumber)
	assert.Nil(t, got.OrderDate)
	require.NotNil(t, got.OrderHour)
	assert.Equal(t, model.Clock(20, 30, 0), *got.OrderHour)

	var body struct {
		Message string      `json:"message"`
		Booking bookingResp `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Booking updated successfully", body.Message)
	assert.Equal(t, 4, body.Booking.GuestNumber)
	assert.Equal(t, "20:30", body.Booking.OrderHour.String())
}

func TestBookingUpdate_Errors(t *testing.T) {
	f := &fakeBookings{update: func(uint64, model.BookingPatch) (*model.Booking, error) {
		return nil, repository.ErrBookingNotFound
	}}
	e := bookingServer(f)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/api/booking/5", `{"guestNumber":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPut, "/api/booking/5", `{"guestNumber":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPut, "/api/booking/5", `{"orderDate":"soon"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPut, "/api/booking/abc", `{"guestNumber":3}`).Code)
}

func TestBookingGetListDelete(t *testing.T) {
	f := &fakeBookings{stored: map[uint64]*model.Booking{
		2: {ID: 2, GuestNumber: 6, OrderDate: visit, OrderHour: model.Clock(18, 0, 0), RestaurantID: 1, UserID: 7},
	}}
	e := bookingServer(f)

	rec := do(e, http.MethodGet, "/api/booking/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orderHour":"18:00"`)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/booking/9", "").Code)

	rec = do(e, http.MethodGet, "/api/booking", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []bookingResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/restaurant/1/booking", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/restaurant/8/booking", "").Code)

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/api/booking/2", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/api/booking/2", "").Code)
}
