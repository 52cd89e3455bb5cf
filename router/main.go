package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/database"
	"github.com/igtharvillage/thar-api/handlers"
	admin_handlers "github.com/igtharvillage/thar-api/handlers/admin"
	auth_handlers "github.com/igtharvillage/thar-api/handlers/auth"
	content_handlers "github.com/igtharvillage/thar-api/handlers/content"
	media_handlers "github.com/igtharvillage/thar-api/handlers/media"
	settings_handlers "github.com/igtharvillage/thar-api/handlers/settings"
	"github.com/igtharvillage/thar-api/utils"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"github.com/igtharvillage/thar-api/utils/response"
)

// Dependencies are the handlers and middleware the route table mounts.
// Media and RateLimitStorage may be nil.
type Dependencies struct {
	Store            database.Storage
	AllowedOrigins   string
	RateLimitStorage fiber.Storage
	AuthMiddleware   *middleware.AuthMiddleware
	Audit            middleware.AuditSink
	Kinds            []content_handlers.Kind
	Search           *content_handlers.SearchHandler
	Auth             *auth_handlers.AuthHandler
	Admin            *admin_handlers.AdminHandler
	Media            *media_handlers.MediaHandler
	Settings         settings_handlers.Source
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    deps.AllowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
		RateLimitStorage:  deps.RateLimitStorage,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, deps.Store))

	// API v1 group
	api := app.Group("/api/v1")

	mountPublic(api, deps)
	mountAdmin(api, deps)
}

func mountPublic(api fiber.Router, deps Dependencies) {
	authMiddleware := deps.AuthMiddleware

	// Site settings (public)
	api.Get("/settings", settings_handlers.GetPublicSettings(deps.Settings))

	// Search across content kinds
	api.Get("/search", deps.Search.Search)

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.Auth.Register)

	// Profile routes (protected)
	authGroup.Get("/profile", authMiddleware.Required(), deps.Auth.GetProfile)
	authGroup.Put("/profile", authMiddleware.Required(), deps.Auth.UpdateProfile)
}

func mountAdmin(api fiber.Router, deps Dependencies) {
	authMiddleware := deps.AuthMiddleware
	audit := func(action, resource string) fiber.Handler {
		return middleware.AdminAuditLog(deps.Audit, action, resource)
	}

	// Admin session routes, mounted before the admin group so login stays public
	api.Post("/admin/login", deps.Auth.AdminLogin)
	api.Get("/admin/session", deps.Auth.Session)
	api.Post("/admin/logout", authMiddleware.Required(), deps.Auth.Logout)

	admin := api.Group("/admin", authMiddleware.RequireAdmin())

	// Content kinds: public reads on /api/v1/<kind>, writes on /api/v1/admin/<kind>
	for _, kind := range deps.Kinds {
		kind.Register(api, admin, audit)
	}

	admin.Get("/dashboard", deps.Admin.GetDashboard)

	// Settings (/settings/raw before /settings/:key)
	admin.Get("/settings", deps.Admin.GetSiteSettings)
	admin.Put("/settings", audit("settings_update", "settings"), deps.Admin.UpdateSiteSettings)
	admin.Get("/settings/raw", deps.Admin.ListSettings)
	admin.Get("/settings/:key", deps.Admin.GetSetting)

	// Users
	admin.Get("/users", deps.Admin.ListUsers)
	admin.Put("/users/:id/role", audit("user_role_update", "users"), deps.Admin.UpdateUserRole)

	// Audit trail
	admin.Get("/audit", deps.Admin.ListAuditLogs)
	admin.Get("/audit/:id", deps.Admin.GetAuditLog)

	// Uploads
	if deps.Media != nil {
		admin.Post("/uploads", audit("media_upload", "uploads"), deps.Media.Upload)
		admin.Delete("/uploads", audit("media_delete", "uploads"), deps.Media.Delete)
	} else {
		unavailable := func(c *fiber.Ctx) error {
			return response.ServiceUnavailable(c, "Media storage is not configured")
		}
		admin.Post("/uploads", unavailable)
		admin.Delete("/uploads", unavailable)
	}

	// Search maintenance
	admin.Post("/search/reindex", audit("search_reindex", "search"), deps.Search.HandleReindex)
}
