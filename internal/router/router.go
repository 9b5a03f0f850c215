package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/model"
)

// Deps carries what the middleware chain needs.  A nil Redis client turns
// the cache and the rate limiter into pass-through middleware.
type Deps struct {
	Log       *slog.Logger
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	JWTSecret string
	Users     middleware.APITokenLookup
}

// Handlers groups every API handler.
type Handlers struct {
	Auth       *handler.AuthHandler
	Bookings   *handler.BookingHandler
	Restaurant *handler.RestaurantHandler
	Category   *handler.CategoryHandler
	Food       *handler.FoodHandler
	Picture    *handler.PictureHandler
}

// RegisterRoutes registers routes that do not require authentication.
// /healthz answers while the process is up; /readyz also pings the database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAPI registers registration and login publicly and everything else
// under /api behind token auth, ROLE_USER and the rate limiter.  Catalog
// reads go through the Redis cache; catalog writes purge it.  Bookings are
// never cached.
func RegisterAPI(e *echo.Echo, h Handlers, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)

	e.POST("/api/registration", h.Auth.Register, limit)
	e.POST("/api/login", h.Auth.Login, limit)

	api := e.Group("/api",
		middleware.TokenAuth(d.JWTSecret, d.Users, d.Log),
		middleware.RequireRole(model.RoleUser),
		limit,
	)
	api.GET("/me", h.Auth.Me)
	api.PUT("/edit", h.Auth.Edit)

	// ---- Bookings ----
	b := api.Group("/booking")
	b.POST("", h.Bookings.Create)
	b.POST("/check-availability", h.Bookings.CheckAvailability)
	b.GET("", h.Bookings.List)
	b.GET("/:id", h.Bookings.Get)
	b.PUT("/:id", h.Bookings.Update)
	b.DELETE("/:id", h.Bookings.Delete)
	api.GET("/restaurant/:id/booking", h.Bookings.ListByRestaurant)

	cached := []echo.MiddlewareFunc{
		middleware.PurgeOnWrite(d.Cache, d.Redis, d.Log),
		middleware.NewRedisCache(d.Cache, d.Redis, d.Log),
	}

	// ---- Restaurants ----
	r := api.Group("/restaurant", cached...)
	r.POST("", h.Restaurant.Create)
	r.GET("", h.Restaurant.List)
	r.GET("/:id", h.Restaurant.Get)
	r.PUT("/:id", h.Restaurant.Update)
	r.DELETE("/:id", h.Restaurant.Delete)

	// ---- Categories ----
	c := api.Group("/category", cached...)
	c.POST("", h.Category.Create)
	c.GET("", h.Category.List)
	c.GET("/:id", h.Category.Get)
	c.PUT("/:id", h.Category.Update)
	c.DELETE("/:id", h.Category.Delete)

	// ---- Foods ----
	f := api.Group("/food", cached...)
	f.POST("", h.Food.Create)
	f.GET("", h.Food.List)
	f.GET("/category/:categoryId", h.Food.ListByCategory)
	f.GET("/:id", h.Food.Get)
	f.PUT("/:id", h.Food.Update)
	f.DELETE("/:id", h.Food.Delete)

	// ---- Pictures ----
	p := api.Group("/picture", cached...)
	p.POST("", h.Picture.Create)
	p.GET("", h.Picture.List)
	p.GET("/:id", h.Picture.Get)
	p.PUT("/:id", h.Picture.Update)
	p.DELETE("/:id", h.Picture.Delete)
}
