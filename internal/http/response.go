package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "taskboard.dev/taskboard/internal/errors"
	"taskboard.dev/taskboard/internal/http/validators"
)

// envelope is the uniform response body. data is kept loosely typed on
// the write side; pkg/api.Envelope is its strongly typed read side.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respondData(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// ErrorHandler converts every error escaping a handler into the
// envelope, so clients never see a bare echo error shape.
func ErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"
		var fieldErrors map[string][]string

		var appErr *apperrors.Exception
		var echoErr *echo.HTTPError
		var verr validator.ValidationErrors

		switch {
		case errors.As(err, &verr):
			status = http.StatusUnprocessableEntity
			message = "the given data was invalid"
			fieldErrors = validators.FieldErrors(verr)
		case errors.As(err, &appErr):
			status = appErr.StatusCode
			message = appErr.Message
		case errors.As(err, &echoErr):
			status = echoErr.Code
			if m, ok := echoErr.Message.(string); ok {
				message = m
			}
		default:
			logger.WithError(err).WithField("path", c.Path()).Error("unhandled request error")
		}

		_ = c.JSON(status, envelope{
			Success: false,
			Message: message,
			Errors:  fieldErrors,
		})
	}
}
