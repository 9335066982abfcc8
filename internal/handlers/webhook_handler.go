package handlers

import (
	"net/http"

	"donation_backend/internal/logger"
	"donation_backend/internal/services"
	"donation_backend/internal/services/dto"
	"donation_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBodyBytes   = 64 << 10
)

type WebhookHandler struct {
	*BaseHandler
	donationService services.DonationService
}

func NewWebhookHandler(base *BaseHandler, donationService services.DonationService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:     base,
		donationService: donationService,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.HandleWebhook)
}

// HandleWebhook принимает события Stripe. Для проверки подписи нужно сырое
// тело, поэтому оно читается до любого JSON декодирования.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Failed to read webhook body", "error", err.Error())
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	err = h.donationService.ApplyWebhookEvent(c.Request.Context(), h.GetDB(c), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAckResponse{Received: true})
}
