package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body shared by every handler. Error is the
// short category, Message the human-readable detail.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Machine-readable error codes for API clients.
const (
	// Authentication errors
	CodeMissingToken           = "MISSING_TOKEN"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeInvalidTokenFormat     = "INVALID_TOKEN_FORMAT"
	CodeInvalidUserInfo        = "INVALID_USER_INFO"
	CodeUserNotFoundOrInactive = "USER_NOT_FOUND_OR_INACTIVE"
	CodeAuthVerificationError  = "AUTH_VERIFICATION_ERROR"
	CodeUserNotAuthenticated   = "USER_NOT_AUTHENTICATED"

	// Authorization errors
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodePermissionCheckError    = "PERMISSION_CHECK_ERROR"

	// Validation errors
	CodeValidationError = "VALIDATION_ERROR"

	// Resource errors
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	CodeDuplicateResource = "DUPLICATE_RESOURCE"

	// Server errors
	CodeDatabaseError = "DATABASE_ERROR"
)

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, errorCode, errorMessage, detailedMessage string, details interface{}) {
	response := ErrorResponse{
		Error:   errorMessage,
		Message: detailedMessage,
		Code:    errorCode,
	}

	if details != nil {
		response.Details = details
	}

	c.JSON(statusCode, response)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, message string, details interface{}) {
	SendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", message, details)
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c *gin.Context, resource string) {
	SendError(c, http.StatusNotFound, CodeResourceNotFound, "Resource not found",
		"The requested "+resource+" was not found", nil)
}

// SendConflictError reports a uniqueness violation, such as a duplicate
// national id or hospital code.
func SendConflictError(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, CodeDuplicateResource, "Duplicate resource",
		message, nil)
}

// SendDatabaseError sends a database error response
func SendDatabaseError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Database error",
		message, nil)
}
