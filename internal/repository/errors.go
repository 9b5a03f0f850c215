// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. A
// missing row is reported with the entity's own not-found error, and
// MySQL constraint violations are translated into the sentinels below
// so callers never need to inspect driver error codes.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a
// category that is still linked to foods through a restricted key.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrFoodNotFound       = errors.New("food not found")
	ErrPictureNotFound    = errors.New("picture not found")
	ErrBookingNotFound    = errors.New("booking not found")

	// ErrReferenceNotFound is returned when a write points at a parent
	// row that does not exist (MySQL error 1452).
	ErrReferenceNotFound = errors.New("referenced row not found")
)

// MySQL server error numbers translated by this package.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// translate maps constraint violations onto package sentinels and passes
// every other error through unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isMySQLError(err, errNoReferencedRow):
		return ErrReferenceNotFound
	case isMySQLError(err, errRowIsReferenced):
		return ErrConflict
	}
	return err
}
