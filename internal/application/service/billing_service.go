package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/pricing"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cashierSession owns the active draft of one cashier. mu serialises every
// operation on the draft, including a checkout in flight.
type cashierSession struct {
	mu    sync.Mutex
	draft *entity.BillDraft
}

// BillingService keeps one active bill per cashier and moves bills between
// the active slot, the held bill store and the invoice ledger.
type BillingService struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	heldRepo     repository.HeldBillRepository
	invoices     *InvoiceService
	policy       pricing.Policy
	clock        clock.Clock
	ids          utils.IDGenerator
	metrics      *metrics.BillingMetrics
	log          *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*cashierSession
}

// BillingDeps groups the collaborators of BillingService
type BillingDeps struct {
	ProductRepo  repository.ProductRepository
	CustomerRepo repository.CustomerRepository
	HeldRepo     repository.HeldBillRepository
	Invoices     *InvoiceService
	Policy       pricing.Policy
	Clock        clock.Clock
	IDs          utils.IDGenerator
	Metrics      *metrics.BillingMetrics
	Log          *zap.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(deps BillingDeps) *BillingService {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.IDs == nil {
		deps.IDs = utils.UUIDGenerator{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &BillingService{
		productRepo:  deps.ProductRepo,
		customerRepo: deps.CustomerRepo,
		heldRepo:     deps.HeldRepo,
		invoices:     deps.Invoices,
		policy:       deps.Policy,
		clock:        deps.Clock,
		ids:          deps.IDs,
		metrics:      deps.Metrics,
		log:          deps.Log,
		sessions:     make(map[uuid.UUID]*cashierSession),
	}
}

// AddItemInput selects a catalog row by ID or by code
type AddItemInput struct {
	ProductID *uuid.UUID
	Code      string
	Quantity  int
	UnitPrice *int64
}

// ApplyDiscountInput is an aggregate discount request
type ApplyDiscountInput struct {
	Value decimal.Decimal
	Mode  enum.DiscountMode
}

// HoldResult is the parked bill plus the fresh draft that replaced it
type HoldResult struct {
	Held *entity.HeldBill    `json:"held_bill"`
	Bill entity.BillSnapshot `json:"bill"`
}

// CheckoutResult is the issued invoice plus the fresh draft that replaced it
type CheckoutResult struct {
	Invoice *entity.Invoice     `json:"invoice"`
	Bill    entity.BillSnapshot `json:"bill"`
}

func (s *BillingService) session(cashierID uuid.UUID) *cashierSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[cashierID]
	if !ok {
		sess = &cashierSession{draft: entity.NewBillDraft(s.policy)}
		s.sessions[cashierID] = sess
	}
	return sess
}

// mutate runs fn against the cashier's draft and returns the resulting
// snapshot. The draft validates before it changes, so an error leaves it as
// it was.
func (s *BillingService) mutate(cashierID uuid.UUID, fn func(d *entity.BillDraft) error) (entity.BillSnapshot, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.draft); err != nil {
		return sess.draft.Snapshot(), err
	}
	return sess.draft.Snapshot(), nil
}

// GetDraft returns the cashier's active bill
func (s *BillingService) GetDraft(ctx context.Context, cashierID uuid.UUID) entity.BillSnapshot {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.draft.Snapshot()
}

// AddItem reads the product from the catalog and adds it to the bill
func (s *BillingService) AddItem(ctx context.Context, cashierID uuid.UUID, input *AddItemInput) (entity.BillSnapshot, error) {
	product, err := s.lookupProduct(ctx, input)
	if err != nil {
		return entity.BillSnapshot{}, err
	}
	if product.IsExpired(s.clock.Now()) {
		return entity.BillSnapshot{}, apperror.ErrProductExpired.WithMessage(
			fmt.Sprintf("%s batch %s expired on %s", product.Name, product.BatchNo, product.ExpiryDate.Format("2006-01-02")))
	}

	item := product.ToBillItem(input.Quantity, input.UnitPrice)
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.AddItem(item)
	})
}

func (s *BillingService) UpdateItem(ctx context.Context, cashierID, productID uuid.UUID, upd entity.ItemUpdate) (entity.BillSnapshot, error) {
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.UpdateItem(productID, upd)
	})
}

func (s *BillingService) RemoveItem(ctx context.Context, cashierID, productID uuid.UUID) (entity.BillSnapshot, error) {
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.RemoveItem(productID)
	})
}

func (s *BillingService) ApplyDiscount(ctx context.Context, cashierID uuid.UUID, input ApplyDiscountInput) (entity.BillSnapshot, error) {
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.ApplyDiscount(input.Value, input.Mode)
	})
}

// SetCustomer attaches customerID to the bill, or detaches when empty. The
// display name comes from the customer directory when the ID is known there;
// an unknown ID is still attached as given.
func (s *BillingService) SetCustomer(ctx context.Context, cashierID uuid.UUID, customerID string) (entity.BillSnapshot, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return s.mutate(cashierID, func(d *entity.BillDraft) error {
			return d.SetCustomer(nil)
		})
	}

	ref := s.resolveCustomer(ctx, customerID)
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.SetCustomer(ref)
	})
}

func (s *BillingService) SetPrescription(ctx context.Context, cashierID uuid.UUID, ref string) (entity.BillSnapshot, error) {
	return s.mutate(cashierID, func(d *entity.BillDraft) error {
		return d.SetPrescription(strings.TrimSpace(ref))
	})
}

// ClearDraft cancels the active bill
func (s *BillingService) ClearDraft(ctx context.Context, cashierID uuid.UUID) entity.BillSnapshot {
	snap, _ := s.mutate(cashierID, func(d *entity.BillDraft) error {
		d.Clear()
		return nil
	})
	return snap
}

// HoldDraft parks the active bill and gives the cashier a fresh one
func (s *BillingService) HoldDraft(ctx context.Context, cashierID uuid.UUID, label string) (*HoldResult, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.draft.IsEmpty() {
		return nil, apperror.ErrEmptyBill.WithMessage("Cannot hold a bill with no items")
	}

	held, err := s.heldRepo.Hold(ctx, s.ids.NewID(), strings.TrimSpace(label), cashierID, sess.draft)
	if err != nil {
		return nil, err
	}
	sess.draft = entity.NewBillDraft(s.policy)
	s.refreshHeldGauge(ctx)

	s.log.Info("bill held",
		zap.String("held_bill_id", held.ID),
		zap.String("label", held.Label),
		zap.String("cashier_id", cashierID.String()),
	)
	return &HoldResult{Held: held, Bill: sess.draft.Snapshot()}, nil
}

// ListHeld returns the held bills oldest first
func (s *BillingService) ListHeld(ctx context.Context) ([]*entity.HeldBill, error) {
	return s.heldRepo.List(ctx)
}

// ResumeHeld moves a held bill into the cashier's active slot. The active
// bill must be empty so nothing is silently discarded.
func (s *BillingService) ResumeHeld(ctx context.Context, cashierID uuid.UUID, id string) (entity.BillSnapshot, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.draft.IsEmpty() {
		return sess.draft.Snapshot(), apperror.ErrBillNotEmpty
	}

	held, err := s.heldRepo.Retrieve(ctx, id)
	if err != nil {
		return sess.draft.Snapshot(), err
	}
	sess.draft = held.Resume()
	s.refreshHeldGauge(ctx)

	s.log.Info("bill resumed",
		zap.String("held_bill_id", held.ID),
		zap.String("cashier_id", cashierID.String()),
	)
	return sess.draft.Snapshot(), nil
}

// DiscardHeld drops a held bill without resuming it
func (s *BillingService) DiscardHeld(ctx context.Context, cashierID uuid.UUID, id string) error {
	if err := s.heldRepo.Remove(ctx, id); err != nil {
		return err
	}
	s.refreshHeldGauge(ctx)

	s.log.Info("held bill discarded",
		zap.String("held_bill_id", id),
		zap.String("cashier_id", cashierID.String()),
	)
	return nil
}

// Checkout finalizes the active bill into the ledger. On success the cashier
// gets a fresh draft; on failure the bill stays exactly as it was.
func (s *BillingService) Checkout(ctx context.Context, cashierID uuid.UUID, payment entity.PaymentDetails) (*CheckoutResult, error) {
	sess := s.session(cashierID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	invoice, err := s.invoices.Checkout(ctx, cashierID, sess.draft, payment)
	if err != nil {
		return nil, err
	}

	sess.draft.Finalize()
	sess.draft = entity.NewBillDraft(s.policy)
	return &CheckoutResult{Invoice: invoice, Bill: sess.draft.Snapshot()}, nil
}

func (s *BillingService) lookupProduct(ctx context.Context, input *AddItemInput) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)
	switch {
	case input.ProductID != nil:
		product, err = s.productRepo.GetByID(ctx, *input.ProductID)
	case strings.TrimSpace(input.Code) != "":
		product, err = s.productRepo.GetByCode(ctx, strings.TrimSpace(input.Code))
	default:
		return nil, apperror.NewBadRequestError("Either product_id or code is required")
	}
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

func (s *BillingService) resolveCustomer(ctx context.Context, customerID string) *entity.CustomerRef {
	ref := &entity.CustomerRef{ID: customerID}
	if s.customerRepo == nil {
		return ref
	}
	id, err := uuid.Parse(customerID)
	if err != nil {
		return ref
	}
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		s.log.Warn("customer lookup failed", zap.String("customer_id", customerID), zap.Error(err))
		return ref
	}
	if customer != nil {
		return customer.Ref()
	}
	return ref
}

func (s *BillingService) refreshHeldGauge(ctx context.Context) {
	if n, err := s.heldRepo.Count(ctx); err == nil {
		s.metrics.SetHeldBills(n)
	}
}
