package handler

import (
	"net/http"

	"github.com/akozyrev/amazon-connect/internal/dto"
	"github.com/akozyrev/amazon-connect/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AmazonAuthHandler handles the Amazon account connection flow
type AmazonAuthHandler struct {
	authService service.AmazonAuthService
	logger      *zap.Logger
}

// NewAmazonAuthHandler creates a new Amazon auth handler
func NewAmazonAuthHandler(authService service.AmazonAuthService, logger *zap.Logger) *AmazonAuthHandler {
	return &AmazonAuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Handle dispatches on the action query parameter
// @Summary Amazon authorization entrypoint
// @Description Starts the consent flow (action=start) or completes it (action=callback)
// @Tags amazon-auth
// @Security BearerAuth
// @Produce json
// @Param action query string true "start or callback"
// @Success 200 {object} dto.AuthURLResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /functions/v1/amazon-auth [post]
func (h *AmazonAuthHandler) Handle(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	switch c.Query("action") {
	case "start":
		h.start(c, userID.(string))
	case "callback":
		h.callback(c, userID.(string))
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Invalid action, expected start or callback",
		})
	}
}

func (h *AmazonAuthHandler) start(c *gin.Context, userID string) {
	authURL, err := h.authService.Start(c.Request.Context(), userID, requestOrigin(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthURLResponse{AuthURL: authURL})
}

func (h *AmazonAuthHandler) callback(c *gin.Context, userID string) {
	var req dto.CallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	sellerID, err := h.authService.Callback(c.Request.Context(), userID, requestOrigin(c), req.Code, req.State, req.SellingPartnerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.CallbackResponse{
		Success:  true,
		SellerID: sellerID,
	})
}

// requestOrigin reconstructs the external origin of the request. The consent
// redirect_uri must match it exactly, including the scheme set by a TLS
// terminating proxy.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
