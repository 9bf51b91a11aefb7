package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
	"github.com/oksasatya/go-ddd-notes/pkg/validation"
)

const msgInvalidBody = "Invalid request body"

// bindJSON decodes and validates the body. An empty body counts as {} so
// that missing fields are reported as missing rather than as bad JSON.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(dst)
	}
	return err
}

// statusFor maps application errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrNotAuthenticated),
		errors.Is(err, application.ErrInvalidToken),
		errors.Is(err, application.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": msg}. Unexpected errors keep their message and are logged.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		internalErrors.Add(1)
		helpers.RequestLogger(logger, c).WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error(c, status, err.Error(), nil)
}

func badBody(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, msgInvalidBody, validation.ToDetails(err))
}
