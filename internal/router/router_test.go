package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/logger"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

type noUsers struct{}

func (noUsers) GetByAPIToken(context.Context, string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func newServer() *echo.Echo {
	log := logger.Discard()
	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterRoutes(e, nil)
	RegisterAPI(e, Handlers{
		Auth:       handler.NewAuthHandler(config.Config{}, nil, log),
		Bookings:   handler.NewBookingHandler(nil, log),
		Restaurant: handler.NewRestaurantHandler(nil, log),
		Category:   handler.NewCategoryHandler(nil, log),
		Food:       handler.NewFoodHandler(nil, log),
		Picture:    handler.NewPictureHandler(nil, log),
	}, Deps{Log: log, JWTSecret: "router-secret", Users: noUsers{}})
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /api/registration",
		"POST /api/login",
		"GET /api/me",
		"PUT /api/edit",
		"POST /api/booking",
		"POST /api/booking/check-availability",
		"GET /api/booking",
		"GET /api/booking/:id",
		"PUT /api/booking/:id",
		"DELETE /api/booking/:id",
		"GET /api/restaurant/:id/booking",
		"POST /api/restaurant",
		"DELETE /api/restaurant/:id",
		"PUT /api/category/:id",
		"GET /api/food/category/:categoryId",
		"POST /api/picture",
	} {
		assert.True(t, have[want], "missing route %s", want)
	}
}

func TestProtectedRoutesNeedCredentials(t *testing.T) {
	e := newServer()
	for _, target := range []string{"/api/booking", "/api/me", "/api/restaurant", "/api/food/category/1"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestPublicRoutes(t *testing.T) {
	e := newServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/registration", strings.NewReader(`{"email":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
