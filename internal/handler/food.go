package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// FoodStore is implemented by *repository.FoodRepo.
type FoodStore interface {
	Create(ctx context.Context, f *model.Food, categoryIDs []uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Food, error)
	List(ctx context.Context) ([]*model.Food, error)
	ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Food, error)
	Update(ctx context.Context, id uint64, p model.FoodPatch) error
	Delete(ctx context.Context, id uint64) error
}

type FoodHandler struct {
	Foods FoodStore
	Log   *slog.Logger
}

func NewFoodHandler(s FoodStore, log *slog.Logger) *FoodHandler {
	return &FoodHandler{Foods: s, Log: log}
}

type createFoodReq struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *int     `json:"price" validate:"required,gte=0"`
	Categories  []uint64 `json:"categories" validate:"omitempty,dive,gt=0"`
}

// updateFoodReq replaces the category set when categories is present, even
// as an empty list.
type updateFoodReq struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	Price       *int     `json:"price" validate:"omitempty,gte=0"`
	Categories  []uint64 `json:"categories" validate:"omitempty,dive,gt=0"`
}

func (h *FoodHandler) Create(c echo.Context) error {
	var req createFoodReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	f := &model.Food{Title: req.Title, Description: req.Description, Price: *req.Price}
	if err := h.Foods.Create(ctx, f, req.Categories); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toFood(f))
}

func (h *FoodHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	fs, err := h.Foods.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(fs, toFood))
}

// ListByCategory answers 404 when the category does not exist.
func (h *FoodHandler) ListByCategory(c echo.Context) error {
	id, ok := parseID(c, "categoryId")
	if !ok {
		return badRequest(c, "invalid category id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	fs, err := h.Foods.ListByCategory(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(fs, toFood))
}

func (h *FoodHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	f, err := h.Foods.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toFood(f))
}

func (h *FoodHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateFoodReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	err := h.Foods.Update(ctx, id, model.FoodPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryIDs: req.Categories,
	})
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FoodHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Foods.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
