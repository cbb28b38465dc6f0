// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/utils"
)

const (
	requestIDHeader = "X-Request-ID"

	// Bodies larger than this are not copied into the audit trail.
	maxAuditBodyBytes = 16 * 1024
)

// redactedFields never reach the audit trail.
var redactedFields = []string{"password"}

// RequestID reuses an incoming X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"request_id": utils.GetRequestID(c),
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request processed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

// AuditLogMiddleware records every admin mutation after it completes.
// Handlers name the touched resource through utils.SetAuditResource.
func AuditLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		requestData := captureJSONBody(c)

		c.Next()

		resourceType, resourceID := utils.GetAuditResource(c)
		if resourceType == "" {
			resourceType = "unknown"
		}

		auditLog := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			Status:       c.Writer.Status(),
			RequestID:    utils.GetRequestID(c),
			NewValues:    requestData,
		}

		if err := db.WithContext(c.Request.Context()).Create(auditLog).Error; err != nil {
			logrus.WithError(err).WithField("action", auditLog.Action).Error("Failed to create audit log")
		}
	}
}

// captureJSONBody reads a JSON request body for the audit trail and puts it
// back for the handler. Non-JSON and oversized bodies are not recorded.
func captureJSONBody(c *gin.Context) models.JSONB {
	if c.Request.Body == nil || c.ContentType() != gin.MIMEJSON {
		return nil
	}
	if c.Request.ContentLength > maxAuditBodyBytes {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBodyBytes+1))
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
	if err != nil || len(body) == 0 || len(body) > maxAuditBodyBytes {
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	for _, field := range redactedFields {
		if _, ok := data[field]; ok {
			data[field] = "[REDACTED]"
		}
	}
	return models.JSONB(data)
}
