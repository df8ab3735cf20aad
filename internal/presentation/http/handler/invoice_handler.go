package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

const dateLayout = "2006-01-02"

// InvoiceHandler handles the invoice ledger
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	location       *time.Location
}

// NewInvoiceHandler creates a new invoice handler. start_date and end_date
// are calendar days in loc; nil means UTC.
func NewInvoiceHandler(invoiceService *service.InvoiceService, loc *time.Location) *InvoiceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InvoiceHandler{invoiceService: invoiceService, location: loc}
}

// List handles searching issued invoices. Cashiers only see their own sales.
func (h *InvoiceHandler) List(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search: filter.Search,
	}

	if filter.PaymentMethod != "" {
		method, err := enum.ParsePaymentMethod(filter.PaymentMethod)
		if err != nil {
			response.BadRequest(c, "Invalid payment method")
			return
		}
		params.PaymentMethod = &method
	}

	if filter.StartDate != "" {
		start, err := time.ParseInLocation(dateLayout, filter.StartDate, h.location)
		if err != nil {
			response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &start
	}

	if filter.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, filter.EndDate, h.location)
		if err != nil {
			response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		// end date is inclusive of the whole day
		end = end.AddDate(0, 0, 1)
		params.EndDate = &end
	}

	if IsManager(c) {
		if filter.CashierID != "" {
			id, err := uuid.Parse(filter.CashierID)
			if err != nil {
				response.BadRequest(c, "Invalid cashier ID")
				return
			}
			params.CashierID = &id
		}
	} else {
		params.CashierID = &cashier
	}

	result, err := h.invoiceService.SearchInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles fetching an invoice by ID or invoice number
func (h *InvoiceHandler) Get(c *gin.Context) {
	cashier, ok := cashierID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !IsManager(c) && invoice.CashierID != cashier {
		response.NotFound(c, "Invoice not found")
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}
