// internal/handlers/webhook.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/utils"
)

// MaxWebhookBodyBytes bounds a single event delivery. Stripe documents no
// payload cap; a body above this is answered with 400 and retried by Stripe.
const MaxWebhookBodyBytes = 512 * 1024

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// POST /api/webhook
//
// The signature covers the exact request bytes, so the body is read raw and
// never bound through JSON first.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)
	payload, err := c.GetRawData()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), nil)
		return
	}

	result, err := h.webhookService.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logrus.WithError(err).WithField("ip", c.ClientIP()).Warn("Rejected webhook delivery")
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", i18n.T(lang, i18n.KeyWebhookInvalidSignature), nil)
		return
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   result.EventID,
		"event_type": result.EventType,
		"outcome":    result.Outcome,
	}).Debug("Webhook processed")

	utils.SuccessResponse(c, gin.H{
		"received": true,
	})
}
