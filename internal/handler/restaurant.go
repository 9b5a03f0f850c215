package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// RestaurantStore is implemented by *repository.RestaurantRepo.
type RestaurantStore interface {
	Create(ctx context.Context, rest *model.Restaurant) error
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
	List(ctx context.Context) ([]*model.Restaurant, error)
	Update(ctx context.Context, id uint64, p model.RestaurantPatch) (*model.Restaurant, error)
	Delete(ctx context.Context, id uint64) error
}

type RestaurantHandler struct {
	Restaurants RestaurantStore
	Log         *slog.Logger
}

func NewRestaurantHandler(s RestaurantStore, log *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: s, Log: log}
}

type createRestaurantReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	MaxGuest    *int    `json:"maxGuest" validate:"required,gt=0"`
}

type updateRestaurantReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	MaxGuest    *int    `json:"maxGuest" validate:"omitempty,gt=0"`
}

// Create stores a restaurant owned by the caller.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req createRestaurantReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	rest := &model.Restaurant{Name: req.Name, Description: req.Description, MaxGuest: *req.MaxGuest}
	if uid, err := currentUser(c); err == nil {
		rest.OwnerID = &uid
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Restaurants.Create(ctx, rest); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toRestaurant(rest))
}

func (h *RestaurantHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	rs, err := h.Restaurants.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(rs, toRestaurant))
}

func (h *RestaurantHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toRestaurant(rest))
}

func (h *RestaurantHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateRestaurantReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	rest, err := h.Restaurants.Update(ctx, id, model.RestaurantPatch{
		Name:        req.Name,
		Description: req.Description,
		MaxGuest:    req.MaxGuest,
	})
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toRestaurant(rest))
}

// Delete removes a restaurant with its pictures and bookings.
func (h *RestaurantHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Restaurants.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
