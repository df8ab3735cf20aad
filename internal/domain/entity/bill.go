package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// BillItem is one catalog line on a bill. AvailableStock is the catalog stock
// at the time the line was selected and is never refreshed by the bill itself.
type BillItem struct {
	ProductID      uuid.UUID  `json:"product_id"`
	Code           string     `json:"code,omitempty"`
	Name           string     `json:"name"`
	Brand          string     `json:"brand,omitempty"`
	BatchNo        string     `json:"batch_no,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	MRP            int64      `json:"mrp"`
	Quantity       int        `json:"quantity"`
	UnitPrice      int64      `json:"unit_price"`
	LineDiscount   int64      `json:"line_discount"`
	LineTotal      int64      `json:"line_total"`
	AvailableStock int        `json:"available_stock"`
}

// Gross is quantity * unit price before the line discount.
func (i BillItem) Gross() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

func (i BillItem) clone() BillItem {
	if i.ExpiryDate != nil {
		exp := *i.ExpiryDate
		i.ExpiryDate = &exp
	}
	return i
}

// ItemUpdate carries the fields of a line that a cashier may change.
// Nil fields are left as they are.
type ItemUpdate struct {
	Quantity     *int
	UnitPrice    *int64
	LineDiscount *int64
}

// CustomerRef is an opaque customer reference. Name is display only.
type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// BillDraft is the in-progress sale owned by a single cashier session.
// Every mutating method validates first and leaves the draft untouched on
// error, then recomputes all derived totals from the lines.
type BillDraft struct {
	policy pricing.Policy

	customer        *CustomerRef
	prescriptionRef string
	items           []BillItem
	discount        int64

	subtotal  int64
	tax       pricing.TaxBreakdown
	taxAmount int64
	total     int64

	held      bool
	finalized bool
}

// NewBillDraft returns an empty draft priced under policy.
func NewBillDraft(policy pricing.Policy) *BillDraft {
	return &BillDraft{policy: policy, items: []BillItem{}}
}

// BillSnapshot is the read-only projection handed to callers.
type BillSnapshot struct {
	Status          enum.BillStatus      `json:"status"`
	Customer        *CustomerRef         `json:"customer,omitempty"`
	PrescriptionRef string               `json:"prescription_ref,omitempty"`
	Items           []BillItem           `json:"items"`
	ItemCount       int                  `json:"item_count"`
	Subtotal        int64                `json:"subtotal"`
	Discount        int64                `json:"discount"`
	TaxableAmount   int64                `json:"taxable_amount"`
	Tax             pricing.TaxBreakdown `json:"tax"`
	TaxAmount       int64                `json:"tax_amount"`
	Total           int64                `json:"total"`
}

func (d *BillDraft) Status() enum.BillStatus {
	switch {
	case d.finalized:
		return enum.BillStatusFinalized
	case d.held:
		return enum.BillStatusHeld
	case len(d.items) == 0:
		return enum.BillStatusEmpty
	default:
		return enum.BillStatusBuilding
	}
}

func (d *BillDraft) Policy() pricing.Policy {
	return d.policy
}

func (d *BillDraft) Subtotal() int64 {
	return d.subtotal
}

func (d *BillDraft) Discount() int64 {
	return d.discount
}

func (d *BillDraft) TaxAmount() int64 {
	return d.taxAmount
}

func (d *BillDraft) Total() int64 {
	return d.total
}

func (d *BillDraft) Tax() pricing.TaxBreakdown {
	return d.tax
}

func (d *BillDraft) PrescriptionRef() string {
	return d.prescriptionRef
}

func (d *BillDraft) IsEmpty() bool {
	return len(d.items) == 0
}

func (d *BillDraft) TaxableAmount() int64 {
	return d.subtotal - d.discount
}

func (d *BillDraft) ItemCount() int {
	return len(d.items)
}

func (d *BillDraft) IsFinalized() bool {
	return d.finalized
}

// Customer returns a copy of the attached customer reference, or nil.
func (d *BillDraft) Customer() *CustomerRef {
	if d.customer == nil {
		return nil
	}
	c := *d.customer
	return &c
}

// Items returns a copy of the lines in insertion order.
func (d *BillDraft) Items() []BillItem {
	out := make([]BillItem, len(d.items))
	for i, it := range d.items {
		out[i] = it.clone()
	}
	return out
}

// Item returns a copy of the line for productID.
func (d *BillDraft) Item(productID uuid.UUID) (BillItem, bool) {
	idx := d.indexOf(productID)
	if idx < 0 {
		return BillItem{}, false
	}
	return d.items[idx].clone(), true
}

// Snapshot returns a deep copy of the draft's visible state.
func (d *BillDraft) Snapshot() BillSnapshot {
	return BillSnapshot{
		Status:          d.Status(),
		Customer:        d.Customer(),
		PrescriptionRef: d.prescriptionRef,
		Items:           d.Items(),
		ItemCount:       len(d.items),
		Subtotal:        d.subtotal,
		Discount:        d.discount,
		TaxableAmount:   d.TaxableAmount(),
		Tax:             d.tax,
		TaxAmount:       d.taxAmount,
		Total:           d.total,
	}
}

// AddItem appends item, or increases the quantity of the existing line with
// the same product. The stock snapshot of a merged line is replaced by the
// incoming one since the caller has just read it from the catalog.
func (d *BillDraft) AddItem(item BillItem) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if item.Quantity <= 0 {
		return apperror.ErrInvalidQuantity.WithField("quantity", "must be greater than zero")
	}
	if item.UnitPrice < 0 {
		return apperror.ErrInvalidPrice.WithField("unit_price", "must not be negative")
	}

	idx := d.indexOf(item.ProductID)
	if idx >= 0 {
		line := d.items[idx]
		qty := line.Quantity + item.Quantity
		if qty > item.AvailableStock {
			return insufficientStock(line.Name, qty, item.AvailableStock)
		}
		line.Quantity = qty
		line.AvailableStock = item.AvailableStock
		line.LineTotal = line.Gross() - line.LineDiscount
		d.items[idx] = line
		d.recompute()
		return nil
	}

	if item.Quantity > item.AvailableStock {
		return insufficientStock(item.Name, item.Quantity, item.AvailableStock)
	}
	if item.LineDiscount < 0 || item.LineDiscount > item.Gross() {
		return lineDiscountOutOfRange(item.LineDiscount, item.Gross())
	}
	line := item.clone()
	line.LineTotal = line.Gross() - line.LineDiscount
	d.items = append(d.items, line)
	d.recompute()
	return nil
}

// UpdateItem changes quantity, unit price or line discount of a line.
func (d *BillDraft) UpdateItem(productID uuid.UUID, upd ItemUpdate) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	idx := d.indexOf(productID)
	if idx < 0 {
		return apperror.NewNotFoundError("Bill item")
	}

	line := d.items[idx]
	if upd.Quantity != nil {
		if *upd.Quantity <= 0 {
			return apperror.ErrInvalidQuantity.WithField("quantity", "must be greater than zero")
		}
		if *upd.Quantity > line.AvailableStock {
			return insufficientStock(line.Name, *upd.Quantity, line.AvailableStock)
		}
		line.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		if *upd.UnitPrice < 0 {
			return apperror.ErrInvalidPrice.WithField("unit_price", "must not be negative")
		}
		line.UnitPrice = *upd.UnitPrice
	}
	if upd.LineDiscount != nil {
		line.LineDiscount = *upd.LineDiscount
	}
	if line.LineDiscount < 0 || line.LineDiscount > line.Gross() {
		return lineDiscountOutOfRange(line.LineDiscount, line.Gross())
	}

	line.LineTotal = line.Gross() - line.LineDiscount
	d.items[idx] = line
	d.recompute()
	return nil
}

// RemoveItem deletes a line. Customer and prescription stay attached.
func (d *BillDraft) RemoveItem(productID uuid.UUID) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	idx := d.indexOf(productID)
	if idx < 0 {
		return apperror.NewNotFoundError("Bill item")
	}
	d.items = append(d.items[:idx], d.items[idx+1:]...)
	d.recompute()
	return nil
}

// ApplyDiscount replaces the aggregate discount after validating it against
// the current subtotal.
func (d *BillDraft) ApplyDiscount(requested decimal.Decimal, mode enum.DiscountMode) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	amount, err := pricing.ApplyDiscount(d.subtotal, requested, mode, d.policy.MaxDiscountPercent)
	if err != nil {
		return err
	}
	d.discount = amount
	d.recompute()
	return nil
}

// SetCustomer attaches or, with nil, detaches a customer reference.
func (d *BillDraft) SetCustomer(ref *CustomerRef) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if ref == nil {
		d.customer = nil
		return nil
	}
	c := *ref
	d.customer = &c
	return nil
}

func (d *BillDraft) SetPrescription(ref string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.prescriptionRef = ref
	return nil
}

// Clear discards everything on the draft, including customer and prescription.
func (d *BillDraft) Clear() {
	*d = BillDraft{policy: d.policy, items: []BillItem{}}
}

// Finalize marks the draft as checked out. A finalized draft rejects all
// further mutation.
func (d *BillDraft) Finalize() {
	d.finalized = true
}

// Clone returns a deep copy sharing nothing with d.
func (d *BillDraft) Clone() *BillDraft {
	cp := *d
	cp.items = d.Items()
	cp.customer = d.Customer()
	return &cp
}

// recompute derives every total from the lines in a fixed order:
// subtotal, taxable = subtotal - discount, tax on taxable, total.
func (d *BillDraft) recompute() {
	var subtotal int64
	for _, it := range d.items {
		subtotal += it.LineTotal
	}
	if d.discount > subtotal {
		d.discount = subtotal
	}
	taxable := subtotal - d.discount

	d.subtotal = subtotal
	d.tax = pricing.ComputeTax(taxable, d.policy.Tax)
	d.taxAmount = d.tax.Total
	d.total = taxable + d.taxAmount
}

func (d *BillDraft) indexOf(productID uuid.UUID) int {
	for i := range d.items {
		if d.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *BillDraft) checkMutable() error {
	if d.finalized {
		return apperror.ErrBillFinalized
	}
	return nil
}

func insufficientStock(name string, requested, available int) error {
	return apperror.ErrInsufficientStock.WithMessage(
		fmt.Sprintf("Requested %d of %s but only %d in stock", requested, name, available))
}

func lineDiscountOutOfRange(discount, gross int64) error {
	return apperror.ErrInvalidDiscount.WithMessage(
		fmt.Sprintf("Line discount %d must be between 0 and %d", discount, gross))
}
