package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskboard.dev/taskboard/internal/errors"
	"taskboard.dev/taskboard/internal/services"
)

type AdminHandler struct {
	users *services.UserService
}

func NewAdminHandler(users *services.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, users)
}

func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrUserNotFound
	}

	user, err := h.users.ToggleActive(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "user updated", user.ToAPI())
}
