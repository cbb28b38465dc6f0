// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/i18n"
)

type ErrorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, ErrorBody{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func NotFoundResponse(c *gin.Context, key string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(GetLangFromContext(c), key), nil)
}

func InternalErrorResponse(c *gin.Context) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// HandleServiceError maps a service error onto the HTTP error taxonomy.
// Internal causes are logged and never sent to the client.
func HandleServiceError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternal("internal error", err)
	}

	lang := GetLangFromContext(c)
	message := i18n.T(lang, appErr.Key)
	if message == appErr.Key && appErr.Message != "" {
		message = appErr.Message
	}

	switch appErr.Kind {
	case KindInvalidRequest:
		code := appErr.Kind.String()
		if appErr.Key == i18n.KeyValidationFailed {
			code = "VALIDATION_ERROR"
		}
		ErrorResponse(c, http.StatusBadRequest, code, message, appErr.Details)
	case KindNotFound:
		ErrorResponse(c, http.StatusNotFound, appErr.Kind.String(), message, appErr.Details)
	case KindUnauthorized:
		ErrorResponse(c, http.StatusUnauthorized, appErr.Kind.String(), message, nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		InternalErrorResponse(c)
	}
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLang
}

// SetAuditResource records which resource an admin mutation touched, for the
// audit middleware to pick up after the handler returns.
func SetAuditResource(c *gin.Context, resourceType, resourceID string) {
	c.Set("audit_resource_type", resourceType)
	c.Set("audit_resource_id", resourceID)
}

func GetAuditResource(c *gin.Context) (string, string) {
	return c.GetString("audit_resource_type"), c.GetString("audit_resource_id")
}

func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
