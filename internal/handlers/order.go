// internal/handlers/order.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/services"
	"github.com/javajoker/blob-shop/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GET /api/order/:sessionId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	if sessionID == "" {
		utils.NotFoundResponse(c, i18n.KeyOrderNotFound)
		return
	}

	order, err := h.orderService.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
	})
}

// GET /api/admin/orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListRecent(c.Request.Context(), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, utils.CreatePaginationResult(total, params))
	utils.SuccessResponse(c, gin.H{
		"orders": orders,
	})
}
