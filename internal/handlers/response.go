package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/services"
	"github.com/skillbridge/tutoring-backend/pkg/validator"
)

// envelope is the shape of every JSON response
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, envelope{Success: false, Message: message, Code: code})
}

// respondError translates a service error into its status code. Anything
// that is not a service error is logged and reported as a 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	se, ok := services.AsError(err)
	if !ok {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		_ = c.Error(err)
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	respondFailure(c, statusFor(se.Kind), se.Code, se.Message)
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindState:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// bindJSON binds the request body and writes a 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.Message(err))
		return false
	}
	return true
}

// int64Param parses a numeric path parameter and writes a 400 on failure
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondFailure(c, http.StatusBadRequest, services.ErrInvalidID.Code, services.ErrInvalidID.Message)
		return 0, false
	}
	return id, true
}

// uuidParam parses a UUID path parameter and writes a 400 on failure
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondFailure(c, http.StatusBadRequest, services.ErrInvalidID.Code, services.ErrInvalidID.Message)
		return uuid.Nil, false
	}
	return id, true
}
