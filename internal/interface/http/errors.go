package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-service/internal/domain/errs"
	"github.com/oksasatya/user-service/pkg/response"
)

// writeError maps a service failure onto a status code and envelope.
// Internal failures are logged and answered with a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		conflict *errs.ConflictError
		notFound *errs.NotFoundError
		invalid  *errs.InvalidArgumentError
		cfgErr   *errs.ConfigurationError
	)
	switch {
	case errors.As(err, &conflict):
		response.Error[any](c, http.StatusConflict, conflict.Error(), map[string]string{conflict.Field: "already taken"})
	case errors.As(err, &notFound):
		response.Error[any](c, http.StatusNotFound, notFound.Error(), nil)
	case errors.Is(err, errs.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	case errors.As(err, &invalid):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{invalid.Field: invalid.Reason})
	case errors.As(err, &cfgErr):
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("service misconfigured")
		response.Error[any](c, http.StatusInternalServerError, "service misconfigured", nil)
	default:
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
