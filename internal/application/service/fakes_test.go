package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/metrics"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeProductRepo is an in-memory catalog with the same stock semantics as
// the gorm repository.
type fakeProductRepo struct {
	mu          sync.Mutex
	products    map[uuid.UUID]*entity.Product
	decrementFn func() error
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, p := range r.products {
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.ExcludeExpiredAt != nil && p.IsExpired(*params.ExcludeExpiredAt) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decrementFn != nil {
		if err := r.decrementFn(); err != nil {
			return nil, err
		}
	}
	var failed []uuid.UUID
	for id, qty := range decrements {
		p, ok := r.products[id]
		if !ok || p.Quantity < qty {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, qty := range decrements {
		r.products[id].Quantity -= qty
	}
	return nil, nil
}

func (r *fakeProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, qty := range increments {
		if p, ok := r.products[id]; ok {
			p.Quantity += qty
		}
	}
	return nil
}

func (r *fakeProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Quantity
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
	err       error
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.customers[id], nil
}

// failingInvoiceRepo refuses every append
type failingInvoiceRepo struct {
	repository.InvoiceRepository
}

func (failingInvoiceRepo) Append(ctx context.Context, invoice *entity.Invoice) error {
	return errors.New("ledger unavailable")
}

type fixture struct {
	clock     *clock.FakeClock
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	held      repository.HeldBillRepository
	ledger    repository.InvoiceRepository
	registry  *prometheus.Registry
	metrics   *metrics.BillingMetrics
	invoices  *InvoiceService
	billing   *BillingService

	paracetamol *entity.Product
	amoxicillin *entity.Product
	expired     *entity.Product
}

// newLedgerDB opens a private in-memory sqlite database holding the invoice
// tables.
func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Invoice{}, &entity.InvoiceSequence{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lastYear := now.AddDate(-1, 0, 0)
	nextYear := now.AddDate(1, 0, 0)

	f := &fixture{
		clock: clock.NewFakeClock(now),
		paracetamol: &entity.Product{
			ID: uuid.New(), Code: "MED-00001", Name: "Paracetamol 500mg", BatchNo: "CR2401",
			ExpiryDate: &nextYear, MRP: 110, SellingPrice: 100, Quantity: 10, QuantityAlert: 2,
		},
		amoxicillin: &entity.Product{
			ID: uuid.New(), Code: "MED-00002", Name: "Amoxicillin 250mg", BatchNo: "MX1187",
			MRP: 60, SellingPrice: 50, Quantity: 3, QuantityAlert: 1,
		},
		expired: &entity.Product{
			ID: uuid.New(), Code: "MED-00003", Name: "Cough Syrup", BatchNo: "CS0001",
			ExpiryDate: &lastYear, MRP: 90, SellingPrice: 85, Quantity: 5,
		},
	}
	f.products = newFakeProductRepo(f.paracetamol, f.amoxicillin, f.expired)
	f.customers = &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
	f.held = infraRepo.NewHeldBillRepository(f.clock)
	f.ledger = infraRepo.NewInvoiceRepository(newLedgerDB(t), infraRepo.DefaultInvoiceNumbering())
	f.registry = prometheus.NewRegistry()
	f.metrics = metrics.NewBillingMetrics(f.registry)
	f.wire(f.ledger)
	return f
}

func (f *fixture) wire(ledger repository.InvoiceRepository) {
	f.ledger = ledger
	f.invoices = NewInvoiceService(ledger, f.products, f.clock, f.metrics, zap.NewNop())
	f.billing = NewBillingService(BillingDeps{
		ProductRepo:  f.products,
		CustomerRepo: f.customers,
		HeldRepo:     f.held,
		Invoices:     f.invoices,
		Policy:       pricing.DefaultPolicy(),
		Clock:        f.clock,
		IDs:          utils.NewSequenceGenerator("held"),
		Metrics:      f.metrics,
		Log:          zap.NewNop(),
	})
}

func (f *fixture) assertHeldGauge(t *testing.T, want int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP billing_held_bills Bills currently parked in the held bill store.
# TYPE billing_held_bills gauge
billing_held_bills %d
`, want)
	assert.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(expected), "billing_held_bills"))
}

// counterValue reads the counter in family name carrying label value, 0 when absent.
func (f *fixture) counterValue(t *testing.T, name, label string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func intPtr(v int) *int {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}
