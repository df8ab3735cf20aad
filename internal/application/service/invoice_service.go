package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"go.uber.org/zap"
)

// InvoiceService finalizes drafts into the ledger and reads it back
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	clock       clock.Clock
	metrics     *metrics.BillingMetrics
	log         *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	clk clock.Clock,
	m *metrics.BillingMetrics,
	log *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		clock:       clk,
		metrics:     m,
		log:         log,
	}
}

// Checkout turns draft into a numbered invoice. Payment is validated and
// stock is deducted before the ledger assigns a number, so a refused checkout
// never consumes one. The draft is not modified.
func (s *InvoiceService) Checkout(ctx context.Context, cashierID uuid.UUID, draft *entity.BillDraft, payment entity.PaymentDetails) (*entity.Invoice, error) {
	invoice, err := entity.NewInvoice(uuid.New(), cashierID, s.clock.Now(), draft, payment)
	if err != nil {
		s.metrics.ObserveCheckoutRejection(err)
		return nil, err
	}

	quantities := invoice.Quantities()
	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, quantities)
	if err != nil {
		return nil, fmt.Errorf("deduct stock: %w", err)
	}
	if len(failedIDs) > 0 {
		err := insufficientStockFor(invoice, failedIDs)
		s.metrics.ObserveCheckoutRejection(err)
		return nil, err
	}

	if err := s.invoiceRepo.Append(ctx, invoice); err != nil {
		if restoreErr := s.productRepo.AtomicIncrementBatch(ctx, quantities); restoreErr != nil {
			s.log.Error("failed to restore stock after ledger append failed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(restoreErr),
			)
		}
		return nil, fmt.Errorf("append invoice: %w", err)
	}

	s.metrics.ObserveInvoice(strings.ToLower(invoice.PaymentMethod.String()), invoice.Total)
	s.log.Info("invoice issued",
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("cashier_id", cashierID.String()),
		zap.Int64("total", invoice.Total),
		zap.String("payment_method", invoice.PaymentMethod.String()),
	)
	return invoice, nil
}

// GetInvoice looks an invoice up by ID or by invoice number
func (s *InvoiceService) GetInvoice(ctx context.Context, ref string) (*entity.Invoice, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.invoiceRepo.GetByID(ctx, id)
	}
	return s.invoiceRepo.GetByInvoiceNo(ctx, strings.ToUpper(ref))
}

// SearchInvoices returns matching invoices, most recent first
func (s *InvoiceService) SearchInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[*entity.Invoice], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	invoices, total, err := s.invoiceRepo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, p), nil
}

func insufficientStockFor(invoice *entity.Invoice, failedIDs []uuid.UUID) error {
	failed := make(map[uuid.UUID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}
	var names []string
	for _, it := range invoice.Items {
		if failed[it.ProductID] {
			names = append(names, it.Name)
		}
	}
	return apperror.ErrInsufficientStock.WithMessage(
		fmt.Sprintf("Insufficient stock for: %s", strings.Join(names, ", ")))
}
