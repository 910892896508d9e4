package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
	"taskboard.dev/taskboard/internal/services"
)

const (
	// ContextUserKey holds the authenticated *model.User on the echo
	// context.
	ContextUserKey = "auth_user"

	// ContextTokenKey holds the raw bearer token, used by logout.
	ContextTokenKey = "auth_token"
)

// Authenticate resolves the Authorization bearer token and stores the
// user on the context. Requests without a valid session are rejected.
func Authenticate(auth *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return apperrors.ErrUnauthorized
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, token)
			return next(c)
		}
	}
}

// RequireAdmin rejects non-admin users. It must run after
// Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.IsAdmin {
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil outside the
// Authenticate middleware.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(ContextUserKey).(*model.User)
	return user
}

// BearerToken returns the raw token stored by Authenticate.
func BearerToken(c echo.Context) string {
	token, _ := c.Get(ContextTokenKey).(string)
	return token
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
