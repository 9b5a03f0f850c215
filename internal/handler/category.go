package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// CategoryStore is implemented by *repository.CategoryRepo.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	UpdateTitle(ctx context.Context, id uint64, title string) error
	Delete(ctx context.Context, id uint64) error
}

type CategoryHandler struct {
	Categories CategoryStore
	Log        *slog.Logger
}

func NewCategoryHandler(s CategoryStore, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{Categories: s, Log: log}
}

type categoryReq struct {
	Title string `json:"title" validate:"required,max=255"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	cat := &model.Category{Title: req.Title}
	if err := h.Categories.Create(ctx, cat); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toCategory(cat))
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	cs, err := h.Categories.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(cs, toCategory))
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toCategory(cat))
}

// Update renames the category; 204 on success.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req categoryReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Categories.UpdateTitle(ctx, id, req.Title); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Categories.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
