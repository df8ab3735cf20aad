package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
)

// BillHandler handles the cashier's active bill
type BillHandler struct {
	billingService *service.BillingService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

// Get returns the active bill
func (h *BillHandler) Get(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	response.OK(c, "Bill retrieved successfully", h.billingService.GetDraft(c.Request.Context(), cashier))
}

// Clear cancels the active bill
func (h *BillHandler) Clear(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	response.OK(c, "Bill cleared successfully", h.billingService.ClearDraft(c.Request.Context(), cashier))
}

// AddItem adds a catalog product to the bill
func (h *BillHandler) AddItem(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.AddItem(c.Request.Context(), cashier, &service.AddItemInput{
		ProductID: req.ProductID,
		Code:      req.Code,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added successfully", snap)
}

// UpdateItem changes quantity, price or line discount of a line
func (h *BillHandler) UpdateItem(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.UpdateItem(c.Request.Context(), cashier, productID, entity.ItemUpdate{
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		LineDiscount: req.LineDiscount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", snap)
}

// RemoveItem deletes a line from the bill
func (h *BillHandler) RemoveItem(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	snap, err := h.billingService.RemoveItem(c.Request.Context(), cashier, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", snap)
}

// ApplyDiscount sets the aggregate discount
func (h *BillHandler) ApplyDiscount(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.ApplyDiscount(c.Request.Context(), cashier, service.ApplyDiscountInput{
		Value: req.Value,
		Mode:  req.Mode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount applied successfully", snap)
}

// SetCustomer attaches or detaches the customer
func (h *BillHandler) SetCustomer(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.SetCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.SetCustomer(c.Request.Context(), cashier, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", snap)
}

// SetPrescription records the prescription reference
func (h *BillHandler) SetPrescription(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.SetPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	snap, err := h.billingService.SetPrescription(c.Request.Context(), cashier, req.PrescriptionRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Prescription updated successfully", snap)
}

// Hold parks the active bill and starts a fresh one
func (h *BillHandler) Hold(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.HoldBillRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	result, err := h.billingService.HoldDraft(c.Request.Context(), cashier, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill held successfully", result)
}

// Checkout settles the active bill and issues the invoice
func (h *BillHandler) Checkout(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.billingService.Checkout(c.Request.Context(), cashier, entity.PaymentDetails{
		Method:         req.PaymentMethod,
		AmountTendered: req.AmountTendered,
		Reference:      req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice issued successfully", result)
}
