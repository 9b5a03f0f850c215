package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

// HeaderAPIToken carries a user's opaque API token.
const HeaderAPIToken = "X-AUTH-TOKEN"

// APITokenLookup resolves an API token to its user.
type APITokenLookup interface {
	GetByAPIToken(ctx context.Context, token string) (*model.User, error)
}

// TokenAuth authenticates a request by either a Bearer access token signed
// with secret or an X-AUTH-TOKEN API token looked up in users.  On success
// the user ID and roles are stored under ContextUserID and ContextRoles.
func TokenAuth(secret string, users APITokenLookup, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				id, err := claims.UserID()
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
				}
				c.Set(ContextUserID, id)
				c.Set(ContextRoles, claims.Roles)
				return next(c)
			}

			token := strings.TrimSpace(c.Request().Header.Get(HeaderAPIToken))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credentials"})
			}
			u, err := users.GetByAPIToken(c.Request().Context(), token)
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if err != nil {
				log.Error("api token lookup failed", "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(ContextUserID, u.ID)
			c.Set(ContextRoles, u.Roles)
			return next(c)
		}
	}
}
