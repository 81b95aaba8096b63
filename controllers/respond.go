package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goldsip/goldsip_backend/models"
	"github.com/goldsip/goldsip_backend/services"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage failure the caller may
// retry.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		status = http.StatusUnprocessableEntity
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: err.Error(),
	})
}
