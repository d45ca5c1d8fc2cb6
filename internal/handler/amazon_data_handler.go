package handler

import (
	"net/http"

	"github.com/akozyrev/amazon-connect/internal/dto"
	"github.com/akozyrev/amazon-connect/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AmazonDataHandler handles data synchronization for connected accounts
type AmazonDataHandler struct {
	orderSync service.OrderSyncService
	logger    *zap.Logger
}

// NewAmazonDataHandler creates a new Amazon data handler
func NewAmazonDataHandler(orderSync service.OrderSyncService, logger *zap.Logger) *AmazonDataHandler {
	return &AmazonDataHandler{
		orderSync: orderSync,
		logger:    logger,
	}
}

// Handle dispatches on the action query parameter
// @Summary Amazon data entrypoint
// @Description Synchronizes Selling Partner data for the caller's account (action=orders)
// @Tags amazon-data
// @Security BearerAuth
// @Produce json
// @Param action query string true "orders"
// @Success 200 {object} dto.SyncOrdersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /functions/v1/amazon-data [post]
func (h *AmazonDataHandler) Handle(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	switch c.Query("action") {
	case "orders":
		h.syncOrders(c, userID.(string))
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid action, expected orders",
		})
	}
}

func (h *AmazonDataHandler) syncOrders(c *gin.Context, userID string) {
	orders, err := h.orderSync.SyncOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SyncOrdersResponse{
		Success: true,
		Orders:  orders,
	})
}
