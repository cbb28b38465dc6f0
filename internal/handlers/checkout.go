// internal/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// POST /api/create-checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "cart"), err.Error())
		return
	}

	session, err := h.checkoutService.CreateSession(c.Request.Context(), req.Items)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, session)
}
