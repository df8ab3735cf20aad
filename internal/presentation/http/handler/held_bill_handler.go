package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
)

// HeldBillHandler handles bills parked at the counter
type HeldBillHandler struct {
	billingService *service.BillingService
}

// NewHeldBillHandler creates a new held bill handler
func NewHeldBillHandler(billingService *service.BillingService) *HeldBillHandler {
	return &HeldBillHandler{billingService: billingService}
}

// List returns the held bills, oldest first
func (h *HeldBillHandler) List(c *gin.Context) {
	held, err := h.billingService.ListHeld(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Held bills retrieved successfully", held)
}

// Resume moves a held bill into the cashier's active bill
func (h *HeldBillHandler) Resume(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	snap, err := h.billingService.ResumeHeld(c.Request.Context(), cashier, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill resumed successfully", snap)
}

// Discard drops a held bill
func (h *HeldBillHandler) Discard(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	if err := h.billingService.DiscardHeld(c.Request.Context(), cashier, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
