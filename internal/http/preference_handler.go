package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "taskboard.dev/taskboard/internal/http/middlewares"
	"taskboard.dev/taskboard/internal/services"
	"taskboard.dev/taskboard/pkg/api"
)

type PreferenceHandler struct {
	preferences *services.PreferenceService
}

func NewPreferenceHandler(preferences *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

func (h *PreferenceHandler) Get(c echo.Context) error {
	user := middleware.CurrentUser(c)

	pref, err := h.preferences.Get(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, pref.ToAPI())
}

func (h *PreferenceHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var input api.PreferenceInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	pref, err := h.preferences.Update(c.Request().Context(), user.ID, input)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "preferences saved", pref.ToAPI())
}
