package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// InvoiceRepository is the append-only invoice ledger.
type InvoiceRepository interface {
	// Append assigns the next invoice number to invoice and stores it. The
	// number is assigned and stored under the same lock or transaction.
	Append(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	// Search returns matching invoices most recent first
	Search(ctx context.Context, params *InvoiceFilterParams) ([]*entity.Invoice, int64, error)
	// LastSequence returns the number of the last invoice issued, 0 when none
	LastSequence(ctx context.Context) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	PaymentMethod *enum.PaymentMethod
	CashierID     *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
}
