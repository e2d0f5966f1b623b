package utils

const (
	AppName    = "BarterHub"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
	MaxPage         = 10000

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"

	// Context keys set by middleware
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextRequestID = "request_id"
	ContextLogger    = "logger"
)

const (
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "You do not have permission to perform this action"
	ErrValidationFailed = "Validation failed"
	ErrInvalidID        = "Invalid ID format"
	ErrTooManyRequests  = "Too many requests, please try again later"
)
