package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a catalog product to the active bill. Either ProductID
// or Code selects the product; UnitPrice overrides the selling price.
type AddItemRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Code      string     `json:"code" binding:"omitempty,max=100"`
	Quantity  int        `json:"quantity"`
	UnitPrice *int64     `json:"unit_price"`
}

// UpdateItemRequest changes a line. Omitted fields are left as they are.
type UpdateItemRequest struct {
	Quantity     *int   `json:"quantity"`
	UnitPrice    *int64 `json:"unit_price"`
	LineDiscount *int64 `json:"line_discount"`
}

// ApplyDiscountRequest sets the aggregate discount. Value is a percentage in
// percent mode and an amount in flat mode.
type ApplyDiscountRequest struct {
	Value decimal.Decimal   `json:"value"`
	Mode  enum.DiscountMode `json:"mode"`
}

// SetCustomerRequest attaches a customer; an empty ID detaches
type SetCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"max=100"`
}

// SetPrescriptionRequest records the prescription the sale was made against
type SetPrescriptionRequest struct {
	PrescriptionRef string `json:"prescription_ref" binding:"max=100"`
}

// HoldBillRequest parks the active bill
type HoldBillRequest struct {
	Label string `json:"label" binding:"max=100"`
}

// CheckoutRequest settles the active bill
type CheckoutRequest struct {
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	AmountTendered int64              `json:"amount_tendered" binding:"min=0"`
	Reference      string             `json:"reference" binding:"max=100"`
}

// InvoiceFilterRequest represents invoice search parameters
type InvoiceFilterRequest struct {
	Search        string `form:"search"`
	PaymentMethod string `form:"payment_method"`
	CashierID     string `form:"cashier_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
