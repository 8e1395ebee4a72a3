package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}

	c.JSON(status, gin.H{
		"error": errInfo,
	})
}

// ServiceError maps a business error to the matching HTTP status response
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrDuplicateRequest), errors.Is(err, ErrMutualFollow):
		ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		ErrorResponse(c, http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotParticipant):
		ErrorResponse(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrThreadNotFound),
		errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMessageNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ErrRequestResolved), errors.Is(err, ErrUserAlreadyExists):
		ErrorResponse(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, ErrUnavailable):
		ErrorResponse(c, http.StatusServiceUnavailable, err.Error(), err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 503:
		return "SERVICE_UNAVAILABLE"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
