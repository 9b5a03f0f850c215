package middleware

// identity.go holds the Echo context keys set by TokenAuth and the helpers
// that read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys populated by TokenAuth and RequestLogger.
const (
	ContextUserID    = "user_id"
	ContextRoles     = "roles"
	ContextRequestID = "request_id"
)

// UserID returns the authenticated user's ID.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextUserID).(uint64)
	return id, ok && id != 0
}

// Roles returns the authenticated user's roles.
func Roles(c echo.Context) []string {
	roles, _ := c.Get(ContextRoles).([]string)
	return roles
}

// currentUserID renders the user for rate-limit keys; "anon" when the
// request is unauthenticated.
func currentUserID(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
