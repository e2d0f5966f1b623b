package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"barterhub/internal/apperrors"
	"barterhub/pkg/logger"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now(),
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	ErrorResponseWithDetails(c, statusCode, code, message, nil)
}

func ErrorResponseWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, APIResponse{
		Status: StatusError,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	})
}

func ValidationErrorResponse(c *gin.Context, details interface{}) {
	HandleServiceError(c, apperrors.Validation(ErrValidationFailed).WithDetails(details))
}

func UnauthorizedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized)
}

func ForbiddenResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusForbidden, string(apperrors.KindForbidden), ErrForbidden)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// HandleServiceError writes the response for an error returned by a service.
// Anything that is not an *apperrors.AppError is logged and reported as a
// generic internal error.
func HandleServiceError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	if appErr.Kind == apperrors.KindInternal {
		RequestLogger(c).
			WithField("path", c.FullPath()).
			WithError(appErr.Unwrap()).
			Error("Request failed")
	}

	details := appErr.Details
	if appErr.Kind == apperrors.KindInvalidTransition {
		details = gin.H{"current_status": appErr.Status}
	}

	ErrorResponseWithDetails(c, appErr.HTTPStatus(), string(appErr.Kind), appErr.Message, details)
}

// RequestLogger returns the logger the logging middleware attached to the
// request, carrying the request and user ids from the request context.
func RequestLogger(c *gin.Context) *logger.Logger {
	log := logger.Standard()
	if value, ok := c.Get(ContextLogger); ok {
		if attached, ok := value.(*logger.Logger); ok {
			log = attached
		}
	}
	return log.WithContext(c.Request.Context())
}
