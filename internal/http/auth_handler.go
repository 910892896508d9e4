package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "taskboard.dev/taskboard/internal/http/middlewares"
	"taskboard.dev/taskboard/internal/services"
	"taskboard.dev/taskboard/pkg/api"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, api.LoginResponse{
		Token: token,
		User:  user.ToAPI(),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), middleware.BearerToken(c)); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return respondData(c, http.StatusOK, middleware.CurrentUser(c).ToAPI())
}
