package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceNumbering configures how ledger sequence numbers are rendered
type InvoiceNumbering struct {
	Prefix string
	Width  int
}

// DefaultInvoiceNumbering renders INV00001, INV00002, ...
func DefaultInvoiceNumbering() InvoiceNumbering {
	return InvoiceNumbering{Prefix: "INV", Width: 5}
}

// counterName keys the invoice_sequences row. Each prefix numbers on its own.
func (n InvoiceNumbering) counterName() string {
	if n.Prefix == "" {
		return "invoice"
	}
	return n.Prefix
}

type invoiceRepository struct {
	db        *gorm.DB
	numbering InvoiceNumbering
}

// NewInvoiceRepository creates an invoice ledger over db. The counter lives in
// invoice_sequences so numbering continues across restarts.
func NewInvoiceRepository(db *gorm.DB, numbering InvoiceNumbering) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db, numbering: numbering}
}

// Append bumps the counter and writes the invoice in one transaction, so a
// failed write never burns a number.
func (r *invoiceRepository) Append(ctx context.Context, invoice *entity.Invoice) error {
	stored := invoice.Clone()
	stored.CreatedAt = stored.CreatedAt.UTC()
	name := r.numbering.counterName()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entity.Invoice{}).Where("id = ?", invoice.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperror.NewConflictError(fmt.Sprintf("Invoice %s already exists", invoice.ID))
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.InvoiceSequence{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.InvoiceSequence{}).
			Where("name = ?", name).
			UpdateColumn("last_value", gorm.Expr("last_value + ?", 1)).Error; err != nil {
			return err
		}

		var seq entity.InvoiceSequence
		if err := tx.First(&seq, "name = ?", name).Error; err != nil {
			return err
		}

		stored.Sequence = seq.LastValue
		stored.InvoiceNo = utils.GenerateInvoiceNo(r.numbering.Prefix, seq.LastValue, r.numbering.Width)
		stored.SearchText = stored.BuildSearchText()
		return tx.Create(stored).Error
	})
	if err != nil {
		return err
	}

	invoice.Sequence = stored.Sequence
	invoice.InvoiceNo = stored.InvoiceNo
	invoice.SearchText = stored.SearchText
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) Search(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]*entity.Invoice, int64, error) {
	var invoices []*entity.Invoice
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(SearchScope(params.Search, "search_text"))

	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}

	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", params.StartDate.UTC())
	}

	if params.EndDate != nil {
		query = query.Where("created_at < ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(PaginateScope(params.Pagination)).
		Order("sequence DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepository) LastSequence(ctx context.Context) (int64, error) {
	var seq entity.InvoiceSequence
	err := r.db.WithContext(ctx).First(&seq, "name = ?", r.numbering.counterName()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
