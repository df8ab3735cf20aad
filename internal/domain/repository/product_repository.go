package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// ProductRepository is the catalog lookup the billing core reads from. Stock
// is only written at checkout.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// AtomicDecrementBatch atomically decrements stock for multiple products.
	// Returns the IDs that lacked stock; if any did, nothing is written.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch puts stock back, used when a checkout is rolled back.
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}

// ProductFilterParams contains filtering parameters for catalog queries
type ProductFilterParams struct {
	Pagination       *pagination.PaginationParams
	Search           string
	InStock          bool
	LowStock         bool
	ExcludeExpiredAt *time.Time // hides batches that expired before this instant
}
