package utils

import (
	"errors"
	"net/http"

	"m3allem/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// ErrGateway marks failures of an external payment or messaging provider.
var ErrGateway = errors.New("gateway error")

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err with the status StatusFor picks. Internal errors are not echoed.
func RespondError(c *gin.Context, message string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		GetLogger().Error(message, zap.Error(err))
		c.JSON(status, ErrorResponse{Message: message})
		return
	}
	JSONError(c, status, message, err.Error())
}
