package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// PictureStore is implemented by *repository.PictureRepo.
type PictureStore interface {
	Create(ctx context.Context, p *model.Picture) error
	GetByID(ctx context.Context, id uint64) (*model.Picture, error)
	List(ctx context.Context) ([]*model.Picture, error)
	Update(ctx context.Context, id uint64, p model.PicturePatch) (*model.Picture, error)
	Delete(ctx context.Context, id uint64) error
}

type PictureHandler struct {
	Pictures PictureStore
	Log      *slog.Logger
}

func NewPictureHandler(s PictureStore, log *slog.Logger) *PictureHandler {
	return &PictureHandler{Pictures: s, Log: log}
}

type createPictureReq struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Slug         string  `json:"slug" validate:"required,max=255"`
	RestaurantID *uint64 `json:"restaurantId" validate:"required,gt=0"`
}

type updatePictureReq struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Slug         *string `json:"slug" validate:"omitempty,min=1,max=255"`
	RestaurantID *uint64 `json:"restaurantId" validate:"omitempty,gt=0"`
}

// Create answers 404 when the restaurant does not exist.
func (h *PictureHandler) Create(c echo.Context) error {
	var req createPictureReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p := &model.Picture{Title: req.Title, Slug: req.Slug, RestaurantID: *req.RestaurantID}
	if err := h.Pictures.Create(ctx, p); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Picture created successfully", "picture": toPicture(p)})
}

func (h *PictureHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	ps, err := h.Pictures.List(ctx)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, mapSlice(ps, toPicture))
}

func (h *PictureHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p, err := h.Pictures.GetByID(ctx, id)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toPicture(p))
}

func (h *PictureHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updatePictureReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	p, err := h.Pictures.Update(ctx, id, model.PicturePatch{
		Title:        req.Title,
		Slug:         req.Slug,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Picture updated successfully", "picture": toPicture(p)})
}

func (h *PictureHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	if err := h.Pictures.Delete(ctx, id); err != nil {
		return storeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
