// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/i18n"
	"github.com/javajoker/inventory-backend/internal/services"
	"github.com/javajoker/inventory-backend/internal/utils"
)

// respondError writes the envelope for a service failure.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var se *services.ServiceError
	if !errors.As(err, &se) {
		logrus.WithError(err).WithField("request_id", utils.GetRequestIDFromContext(c)).Error("Unhandled error")
		utils.InternalErrorResponse(c, "")
		return
	}

	switch se.Kind {
	case services.KindValidation:
		if details, ok := se.Details.([]utils.ValidationError); ok && len(details) > 0 {
			utils.ValidationErrorResponse(c, details)
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", se.Message, nil)
	case services.KindNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", se.Message, nil)
	case services.KindInsufficientStock:
		utils.ConflictResponse(c, "INSUFFICIENT_STOCK", i18n.T(lang, i18n.KeyInsufficientStock), gin.H{
			"reason":    se.Message,
			"retryable": false,
		})
	case services.KindConflict:
		utils.ConflictResponse(c, "CONFLICT", i18n.T(lang, i18n.KeyConcurrentModification), gin.H{
			"retryable": true,
		})
	case services.KindStorageUnavailable:
		logrus.WithError(se.Err).Warn("Storage unavailable")
		utils.ServiceUnavailableResponse(c, "")
	default:
		logrus.WithError(err).WithField("request_id", utils.GetRequestIDFromContext(c)).Error("Internal error")
		utils.InternalErrorResponse(c, "")
	}
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+param, nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}
