package handler // handler defines http handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in messages are the JSON names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bindAndValidate decodes the body into dst and runs struct validation.
// The returned error is already a client-facing message.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errors.New("invalid body")
	}
	if err := c.Validate(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gt", "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), minOf(fe)))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func minOf(fe validator.FieldError) string {
	if fe.Tag() != "gt" {
		return fe.Param()
	}
	n, err := strconv.Atoi(fe.Param())
	if err != nil {
		return fe.Param()
	}
	return strconv.Itoa(n + 1)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// parseDate and parseHour convert wire values into civil types.
func parseDate(s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return d, nil
}

func parseHour(s string) (model.TimeOfDay, error) {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		return 0, errors.New("invalid time format, expected HH:MM")
	}
	return t, nil
}

// currentUser returns the authenticated user's ID set by TokenAuth.
func currentUser(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return id, nil
}

// storeError maps repository errors onto responses.  Unknown errors are
// logged and reported as 500 without details.
func storeError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrRestaurantNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrFoodNotFound),
		errors.Is(err, repository.ErrPictureNotFound),
		errors.Is(err, repository.ErrReferenceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMessage(err)})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource is still referenced"})
	}
	rid, _ := c.Get(middleware.ContextRequestID).(string)
	log.Error("request failed", "request_id", rid, "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// notFoundMessage returns the sentinel's text rather than the wrapped chain.
func notFoundMessage(err error) string {
	for _, s := range []error{
		repository.ErrBookingNotFound, repository.ErrRestaurantNotFound, repository.ErrUserNotFound,
		repository.ErrCategoryNotFound, repository.ErrFoodNotFound, repository.ErrPictureNotFound,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return repository.ErrReferenceNotFound.Error()
}
