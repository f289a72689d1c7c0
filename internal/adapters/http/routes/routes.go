package routes

import (
	"net/http"
	"time"

	"cleanorder-api/internal/adapters/http/handlers"
	"cleanorder-api/internal/adapters/http/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
)

// docsMaxAge is how long shared caches may keep the static API description
const docsMaxAge = time.Hour

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Order  *handlers.OrderHandler
	User   *handlers.UserHandler
}

// Setup configures all routes for the application
func Setup(app *fiber.App, h Handlers, auth middleware.AuthConfig, metricsHandler http.Handler) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	// Prometheus scrape endpoint
	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	// Swagger documentation
	app.Get("/swagger/*", middleware.PublicCacheHeaders(docsMaxAge), swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, h, middleware.AuthMiddleware(auth))
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h Handlers, requireAuth fiber.Handler) {
	// API Info
	router.Get("/", middleware.PublicCacheHeaders(docsMaxAge), h.Health.APIInfo)

	// Auth routes
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, h.Auth, requireAuth)

	// Order routes (Authenticated users)
	orderRoutes := router.Group("/orders")
	orderRoutes.Use(requireAuth, middleware.NoCacheHeaders())
	setupOrderRoutes(orderRoutes, h.Order)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(requireAuth, middleware.AdminOnly())
	userRoutes.Get("/", h.User.ListUsers)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(requireAuth)
	profileRoutes.Get("/", h.User.GetProfile)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, requireAuth fiber.Handler) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)

	// Protected routes
	router.Post("/logout", requireAuth, handler.Logout)
	router.Get("/me", requireAuth, middleware.NoCacheHeaders(), handler.Me)
}

// setupOrderRoutes configures order routes. /summary is registered before /:id.
func setupOrderRoutes(router fiber.Router, handler *handlers.OrderHandler) {
	router.Get("/", handler.List)
	router.Get("/summary", handler.Summary)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/status/:statusId", handler.ChangeStatus)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.Create)
}
