package handlers

import (
	"net/http"

	"donation_backend/internal/models"
	"donation_backend/internal/services"
	"donation_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	*BaseHandler
	donationService services.DonationService
}

func NewDonationHandler(base *BaseHandler, donationService services.DonationService) *DonationHandler {
	return &DonationHandler{
		BaseHandler:     base,
		donationService: donationService,
	}
}

func (h *DonationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/create-payment-intent", h.CreatePaymentIntent)
}

func (h *DonationHandler) CreatePaymentIntent(c *gin.Context) {
	var req dto.CreateDonationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.donationService.CreateDonation(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListDonations перед ответом обновляет pending пожертвования у процессора.
func (h *DonationHandler) ListDonations(c *gin.Context) {
	donations, err := h.donationService.ListAndReconcile(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if donations == nil {
		donations = []models.Donation{}
	}

	c.JSON(http.StatusOK, dto.DonationListResponse{Donations: donations})
}
