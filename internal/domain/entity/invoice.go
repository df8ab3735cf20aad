package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

// PaymentDetails is what the cashier collects at checkout.
type PaymentDetails struct {
	Method         enum.PaymentMethod `json:"method"`
	AmountTendered int64              `json:"amount_tendered"`
	Reference      string             `json:"reference,omitempty"`
}

// Settle validates payment against total and returns the amount recorded as
// tendered and the change due. Non-cash payments are taken at exactly total.
func (p PaymentDetails) Settle(total int64) (tendered, change int64, err error) {
	if !p.Method.IsCash() {
		return total, 0, nil
	}
	if p.AmountTendered < total {
		return 0, 0, apperror.ErrInsufficientPayment.WithMessage(
			fmt.Sprintf("Amount tendered %d is less than the bill total %d", p.AmountTendered, total))
	}
	return p.AmountTendered, p.AmountTendered - total, nil
}

// Invoice is the immutable record of a completed sale. InvoiceNo and Sequence
// are assigned by the ledger when the invoice is appended.
type Invoice struct {
	ID               uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo        string               `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	Sequence         int64                `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt        time.Time            `gorm:"index" json:"created_at"`
	CashierID        uuid.UUID            `gorm:"type:uuid;index" json:"cashier_id"`
	Customer         *CustomerRef         `gorm:"type:text;serializer:json" json:"customer,omitempty"`
	PrescriptionRef  string               `gorm:"size:100" json:"prescription_ref,omitempty"`
	Items            []BillItem           `gorm:"type:text;serializer:json" json:"items"`
	Subtotal         int64                `json:"subtotal"`
	Discount         int64                `json:"discount"`
	TaxAmount        int64                `json:"tax_amount"`
	Total            int64                `json:"total"`
	Tax              pricing.TaxBreakdown `gorm:"embedded;embeddedPrefix:tax_" json:"tax"`
	PaymentMethod    enum.PaymentMethod   `gorm:"index" json:"payment_method"`
	AmountTendered   int64                `json:"amount_tendered"`
	ChangeReturned   int64                `json:"change_returned"`
	PaymentReference string               `gorm:"size:100" json:"payment_reference,omitempty"`
	SearchText       string               `gorm:"type:text" json:"-"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceSequence is the persisted counter behind invoice numbering, one row
// per numbering prefix.
type InvoiceSequence struct {
	Name      string `gorm:"size:50;primary_key"`
	LastValue int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for the InvoiceSequence model
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

// NewInvoice copies draft into an unnumbered invoice after validating payment.
// The draft itself is left untouched.
func NewInvoice(id uuid.UUID, cashierID uuid.UUID, createdAt time.Time, draft *BillDraft, payment PaymentDetails) (*Invoice, error) {
	if draft.IsFinalized() {
		return nil, apperror.ErrBillFinalized
	}
	if draft.IsEmpty() {
		return nil, apperror.ErrEmptyBill
	}
	tendered, change, err := payment.Settle(draft.Total())
	if err != nil {
		return nil, err
	}

	return &Invoice{
		ID:               id,
		CreatedAt:        createdAt,
		CashierID:        cashierID,
		Customer:         draft.Customer(),
		PrescriptionRef:  draft.PrescriptionRef(),
		Items:            draft.Items(),
		Subtotal:         draft.Subtotal(),
		Discount:         draft.Discount(),
		TaxAmount:        draft.TaxAmount(),
		Total:            draft.Total(),
		Tax:              draft.Tax(),
		PaymentMethod:    payment.Method,
		AmountTendered:   tendered,
		ChangeReturned:   change,
		PaymentReference: payment.Reference,
	}, nil
}

// Quantities sums sold quantity per product.
func (i *Invoice) Quantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(i.Items))
	for _, it := range i.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}

func (i *Invoice) searchFields() []string {
	fields := []string{i.InvoiceNo, i.PrescriptionRef, i.PaymentReference}
	if i.Customer != nil {
		fields = append(fields, i.Customer.ID, i.Customer.Name)
	}
	for _, it := range i.Items {
		fields = append(fields, it.Name, it.Brand, it.Code)
	}
	return fields
}

// Matches reports whether term appears in the invoice number, customer,
// prescription or any item name. Empty term matches everything.
func (i *Invoice) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range i.searchFields() {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// BuildSearchText lowercases the fields Matches looks at into one
// newline-separated string so a store can filter with LIKE.
func (i *Invoice) BuildSearchText() string {
	return strings.ToLower(strings.Join(i.searchFields(), "\n"))
}

func (i *Invoice) Clone() *Invoice {
	cp := *i
	cp.Items = make([]BillItem, len(i.Items))
	for idx, it := range i.Items {
		cp.Items[idx] = it.clone()
	}
	if i.Customer != nil {
		c := *i.Customer
		cp.Customer = &c
	}
	return &cp
}
