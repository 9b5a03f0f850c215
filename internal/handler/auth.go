package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error)
}

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Log   *slog.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email       string  `json:"email" validate:"required,email,max=180"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	FirstName   *string `json:"firstName" validate:"omitempty,max=255"`
	LastName    *string `json:"lastName" validate:"omitempty,max=255"`
	GuestNumber *int    `json:"guestNumber" validate:"omitempty,gt=0"`
	Allergy     *string `json:"allergy" validate:"omitempty,max=255"`
}

// loginReq accepts the email as either username or email.
type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type editReq struct {
	FirstName   *string `json:"firstName" validate:"omitempty,max=255"`
	LastName    *string `json:"lastName" validate:"omitempty,max=255"`
	GuestNumber *int    `json:"guestNumber" validate:"omitempty,gt=0"`
	Allergy     *string `json:"allergy" validate:"omitempty,max=255"`
	Password    *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User        string    `json:"user"`
	APIToken    string    `json:"apiToken"`
	Roles       []string  `json:"roles"`
	AccessToken tokenPart `json:"accessToken"`
}

// Register creates the user with a fresh api token and returns credentials
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	apiToken, err := utils.NewAPIToken()
	if err != nil {
		return storeError(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        []string{model.RoleUser},
		APIToken:     apiToken,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		GuestNumber:  req.GuestNumber,
		Allergy:      req.Allergy,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return storeError(c, h.Log, err)
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login verifies the password and returns the stored api token plus a new
// access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	email := strings.TrimSpace(req.Username)
	if email == "" {
		email = strings.TrimSpace(req.Email)
	}
	if email == "" {
		return badRequest(c, "username is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return storeError(c, h.Log, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issue(c, http.StatusOK, u)
}

func (h *AuthHandler) issue(c echo.Context, status int, u *model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Roles, h.Cfg.AccessTTLMin)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(status, authResp{User: u.Email, APIToken: u.APIToken, Roles: u.Roles, AccessToken: tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		}
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

// Edit updates the caller's profile.  A new password is hashed before it is
// stored.
func (h *AuthHandler) Edit(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	var req editReq
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	patch := model.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		GuestNumber: req.GuestNumber,
		Allergy:     req.Allergy,
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return storeError(c, h.Log, err)
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	u, err := h.Users.UpdateProfile(ctx, uid, patch)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		}
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toProfile(u))
}
