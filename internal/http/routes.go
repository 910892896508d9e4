package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	middleware "taskboard.dev/taskboard/internal/http/middlewares"
	"taskboard.dev/taskboard/internal/http/validators"
	"taskboard.dev/taskboard/internal/services"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Auth       *AuthHandler
	Task       *TaskHandler
	Preference *PreferenceHandler
	Admin      *AdminHandler
}

// Register wires validation, error handling, middlewares and routes
// onto e.
func Register(e *echo.Echo, h Handlers, auth *services.AuthService, logger *logrus.Logger, rateLimitPerMinute int) {
	e.HideBanner = true
	e.Validator = validators.New()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	e.POST("/api/login", h.Auth.Login)

	authed := e.Group("/api", middleware.Authenticate(auth))
	authed.POST("/logout", h.Auth.Logout)
	authed.GET("/me", h.Auth.Me)

	authed.GET("/tasks", h.Task.List)
	authed.POST("/tasks", h.Task.Create)
	authed.GET("/tasks/:id", h.Task.Get)
	authed.PUT("/tasks/:id", h.Task.Update)
	authed.DELETE("/tasks/:id", h.Task.Delete)

	authed.POST("/tasks/:id/attachments", h.Task.UploadAttachment)
	authed.GET("/tasks/:id/attachments/:attachmentID", h.Task.DownloadAttachment)
	authed.DELETE("/tasks/:id/attachments/:attachmentID", h.Task.DeleteAttachment)

	authed.GET("/preferences", h.Preference.Get)
	authed.PUT("/preferences", h.Preference.Update)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id/toggle-active", h.Admin.ToggleUserActive)
}
