package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// ProductService is the read side of the catalog used by the cashier screen
type ProductService struct {
	productRepo repository.ProductRepository
	clock       clock.Clock
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, clk clock.Clock) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		clock:       clk,
	}
}

// ListProducts searches the catalog. Expired batches are hidden unless the
// caller asks for them.
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams, includeExpired bool) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	if !includeExpired {
		now := s.clock.Now()
		params.ExcludeExpiredAt = &now
	}

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, p), nil
}

// GetProductByID retrieves a catalog row by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ScanProduct resolves a scanned barcode or typed product code
func (s *ProductService) ScanProduct(ctx context.Context, code string) (*entity.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.NewBadRequestError("Product code is required")
	}

	product, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}
