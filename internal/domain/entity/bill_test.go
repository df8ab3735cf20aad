package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(name string, qty int, price int64, stock int) BillItem {
	return BillItem{
		ProductID:      uuid.New(),
		Name:           name,
		Quantity:       qty,
		UnitPrice:      price,
		AvailableStock: stock,
	}
}

func intPtr(v int) *int {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func assertConsistent(t *testing.T, d *BillDraft) {
	t.Helper()
	var sum int64
	for _, it := range d.Items() {
		assert.Equal(t, it.Gross()-it.LineDiscount, it.LineTotal, "line %s", it.Name)
		assert.LessOrEqual(t, it.Quantity, it.AvailableStock, "line %s", it.Name)
		sum += it.LineTotal
	}
	assert.Equal(t, sum, d.Subtotal())
	assert.GreaterOrEqual(t, d.Discount(), int64(0))
	assert.LessOrEqual(t, d.Discount(), d.Subtotal())
	assert.Equal(t, pricing.ComputeTax(d.Subtotal()-d.Discount(), d.Policy().Tax).Total, d.TaxAmount())
	assert.Equal(t, d.Subtotal()-d.Discount()+d.TaxAmount(), d.Total())
}

func TestNewBillDraftIsEmpty(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	snap := d.Snapshot()

	assert.Equal(t, enum.BillStatusEmpty, snap.Status)
	assert.Zero(t, snap.Subtotal)
	assert.Zero(t, snap.Discount)
	assert.Zero(t, snap.TaxAmount)
	assert.Zero(t, snap.Total)
	assert.NotNil(t, snap.Items)
}

func TestBillDraftScenario(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())

	require.NoError(t, d.AddItem(newItem("Amoxicillin 250mg", 2, 100, 10)))
	assert.Equal(t, int64(200), d.Subtotal())

	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(10), enum.DiscountModePercent))

	snap := d.Snapshot()
	assert.Equal(t, enum.BillStatusBuilding, snap.Status)
	assert.Equal(t, int64(200), snap.Subtotal)
	assert.Equal(t, int64(20), snap.Discount)
	assert.Equal(t, int64(180), snap.TaxableAmount)
	assert.Equal(t, pricing.TaxBreakdown{CGST: 16, SGST: 16, Total: 32}, snap.Tax)
	assert.Equal(t, int64(32), snap.TaxAmount)
	assert.Equal(t, int64(212), snap.Total)
	assertConsistent(t, d)
}

func TestBillDraftDiscountOnEmptyBill(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())

	err := d.ApplyDiscount(decimal.NewFromInt(50), enum.DiscountModeFlat)

	assert.ErrorIs(t, err, apperror.ErrDiscountExceedsSubtotal)
	assert.Zero(t, d.Discount())
	assert.Zero(t, d.Total())
}

func TestAddItemMergesSameProduct(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Cetirizine 10mg", 2, 35, 10)
	other := newItem("ORS Sachet", 1, 20, 50)

	require.NoError(t, d.AddItem(item))
	require.NoError(t, d.AddItem(other))
	item.Quantity = 3
	require.NoError(t, d.AddItem(item))

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Cetirizine 10mg", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(175), items[0].LineTotal)
	assert.Equal(t, "ORS Sachet", items[1].Name)
	assertConsistent(t, d)
}

func TestAddItemInsufficientStock(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Insulin Pen", 2, 450, 3)
	require.NoError(t, d.AddItem(item))
	before := d.Snapshot()

	err := d.AddItem(item)

	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, before, d.Snapshot())
}

func TestAddItemUsesIncomingStockSnapshotOnMerge(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Vitamin D3", 2, 120, 3)
	require.NoError(t, d.AddItem(item))

	item.AvailableStock = 10
	require.NoError(t, d.AddItem(item))

	line, ok := d.Item(item.ProductID)
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 10, line.AvailableStock)
}

func TestAddItemValidation(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())

	assert.ErrorIs(t, d.AddItem(newItem("A", 0, 10, 5)), apperror.ErrInvalidQuantity)
	assert.ErrorIs(t, d.AddItem(newItem("B", 1, -1, 5)), apperror.ErrInvalidPrice)

	withDiscount := newItem("C", 1, 10, 5)
	withDiscount.LineDiscount = 11
	assert.ErrorIs(t, d.AddItem(withDiscount), apperror.ErrInvalidDiscount)

	assert.True(t, d.IsEmpty())
}

func TestAddItemDoesNotChangeDiscount(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	require.NoError(t, d.AddItem(newItem("A", 1, 100, 5)))
	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(15), enum.DiscountModeFlat))

	require.NoError(t, d.AddItem(newItem("B", 1, 400, 5)))

	assert.Equal(t, int64(15), d.Discount())
	assertConsistent(t, d)
}

func TestUpdateItem(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Paracetamol 500mg", 2, 30, 6)
	require.NoError(t, d.AddItem(item))

	require.NoError(t, d.UpdateItem(item.ProductID, ItemUpdate{Quantity: intPtr(4), UnitPrice: int64Ptr(25)}))
	line, _ := d.Item(item.ProductID)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, int64(100), line.LineTotal)

	require.NoError(t, d.UpdateItem(item.ProductID, ItemUpdate{LineDiscount: int64Ptr(10)}))
	line, _ = d.Item(item.ProductID)
	assert.Equal(t, int64(90), line.LineTotal)
	assert.Equal(t, int64(90), d.Subtotal())
	assertConsistent(t, d)
}

func TestUpdateItemRejectsWithoutMutation(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Azithromycin 500mg", 1, 90, 3)
	require.NoError(t, d.AddItem(item))
	require.NoError(t, d.UpdateItem(item.ProductID, ItemUpdate{LineDiscount: int64Ptr(50)}))
	before := d.Snapshot()

	cases := []struct {
		name string
		upd  ItemUpdate
		want error
	}{
		{name: "over stock", upd: ItemUpdate{Quantity: intPtr(4), UnitPrice: int64Ptr(1)}, want: apperror.ErrInsufficientStock},
		{name: "zero quantity", upd: ItemUpdate{Quantity: intPtr(0)}, want: apperror.ErrInvalidQuantity},
		{name: "negative price", upd: ItemUpdate{Quantity: intPtr(2), UnitPrice: int64Ptr(-5)}, want: apperror.ErrInvalidPrice},
		{name: "discount above line", upd: ItemUpdate{UnitPrice: int64Ptr(40)}, want: apperror.ErrInvalidDiscount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, d.UpdateItem(item.ProductID, tc.upd), tc.want)
			assert.Equal(t, before, d.Snapshot())
		})
	}

	assert.ErrorIs(t, d.UpdateItem(uuid.New(), ItemUpdate{Quantity: intPtr(1)}), apperror.ErrNotFound)
}

func TestRemoveItemKeepsReferences(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("Cough Syrup", 1, 85, 4)
	require.NoError(t, d.AddItem(item))
	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(5), enum.DiscountModeFlat))
	require.NoError(t, d.SetCustomer(&CustomerRef{ID: "cust-7", Name: "R. Iyer"}))
	require.NoError(t, d.SetPrescription("RX-2231"))

	require.NoError(t, d.RemoveItem(item.ProductID))

	snap := d.Snapshot()
	assert.Equal(t, enum.BillStatusEmpty, snap.Status)
	assert.Zero(t, snap.Subtotal)
	assert.Zero(t, snap.Discount)
	assert.Zero(t, snap.TaxAmount)
	assert.Zero(t, snap.Total)
	require.NotNil(t, snap.Customer)
	assert.Equal(t, "cust-7", snap.Customer.ID)
	assert.Equal(t, "RX-2231", snap.PrescriptionRef)

	assert.ErrorIs(t, d.RemoveItem(item.ProductID), apperror.ErrNotFound)
}

func TestApplyDiscountReplacesAndIsIdempotent(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	require.NoError(t, d.AddItem(newItem("A", 3, 111, 5)))

	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(10), enum.DiscountModePercent))
	first := d.Snapshot()
	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(10), enum.DiscountModePercent))
	assert.Equal(t, first, d.Snapshot())

	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(5), enum.DiscountModeFlat))
	assert.Equal(t, int64(5), d.Discount())

	err := d.ApplyDiscount(decimal.NewFromInt(25), enum.DiscountModePercent)
	assert.ErrorIs(t, err, apperror.ErrDiscountExceedsPolicy)
	assert.Equal(t, int64(5), d.Discount())
	assertConsistent(t, d)
}

func TestRemoveItemClampsDiscount(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	big := newItem("Nebulizer", 1, 1500, 2)
	small := newItem("Mask", 1, 40, 20)
	require.NoError(t, d.AddItem(big))
	require.NoError(t, d.AddItem(small))
	require.NoError(t, d.ApplyDiscount(decimal.NewFromInt(100), enum.DiscountModeFlat))

	require.NoError(t, d.RemoveItem(big.ProductID))

	assert.Equal(t, int64(40), d.Discount())
	assert.Equal(t, int64(0), d.Total())
	assertConsistent(t, d)
}

func TestBillDraftInvariantAcrossMutations(t *testing.T) {
	d := NewBillDraft(pricing.Policy{
		Tax:                pricing.NewSplitTaxConfig(decimal.NewFromInt(12)),
		MaxDiscountPercent: decimal.NewFromInt(30),
	})
	a := newItem("A", 1, 37, 9)
	b := newItem("B", 2, 129, 9)
	c := newItem("C", 5, 3, 9)

	steps := []func() error{
		func() error { return d.AddItem(a) },
		func() error { return d.AddItem(b) },
		func() error { return d.ApplyDiscount(decimal.RequireFromString("12.5"), enum.DiscountModePercent) },
		func() error { return d.AddItem(c) },
		func() error { return d.UpdateItem(b.ProductID, ItemUpdate{Quantity: intPtr(7)}) },
		func() error { return d.UpdateItem(a.ProductID, ItemUpdate{LineDiscount: int64Ptr(7)}) },
		func() error { return d.RemoveItem(c.ProductID) },
		func() error { return d.AddItem(a) },
		func() error { return d.RemoveItem(b.ProductID) },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertConsistent(t, d)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	exp := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	item := newItem("A", 1, 10, 5)
	item.ExpiryDate = &exp
	require.NoError(t, d.AddItem(item))
	require.NoError(t, d.SetCustomer(&CustomerRef{ID: "c1"}))

	cp := d.Clone()
	require.NoError(t, d.UpdateItem(item.ProductID, ItemUpdate{Quantity: intPtr(3)}))
	require.NoError(t, d.SetCustomer(&CustomerRef{ID: "c2"}))

	line, _ := cp.Item(item.ProductID)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "c1", cp.Customer().ID)
	assert.Equal(t, int64(10), cp.Subtotal())
}

func TestClearResetsEverything(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	require.NoError(t, d.AddItem(newItem("A", 1, 10, 5)))
	require.NoError(t, d.SetCustomer(&CustomerRef{ID: "c1"}))
	require.NoError(t, d.SetPrescription("RX-1"))

	d.Clear()

	snap := d.Snapshot()
	assert.Equal(t, enum.BillStatusEmpty, snap.Status)
	assert.Nil(t, snap.Customer)
	assert.Empty(t, snap.PrescriptionRef)
	assert.Empty(t, snap.Items)
}

func TestFinalizedDraftRejectsMutation(t *testing.T) {
	d := NewBillDraft(pricing.DefaultPolicy())
	item := newItem("A", 1, 10, 5)
	require.NoError(t, d.AddItem(item))

	d.Finalize()

	assert.Equal(t, enum.BillStatusFinalized, d.Status())
	assert.ErrorIs(t, d.AddItem(item), apperror.ErrBillFinalized)
	assert.ErrorIs(t, d.RemoveItem(item.ProductID), apperror.ErrBillFinalized)
	assert.ErrorIs(t, d.ApplyDiscount(decimal.Zero, enum.DiscountModeFlat), apperror.ErrBillFinalized)
	assert.ErrorIs(t, d.SetPrescription("RX"), apperror.ErrBillFinalized)
}
