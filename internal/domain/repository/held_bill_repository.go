package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
)

// HeldBillRepository stores suspended drafts in hold order, oldest first.
// Implementations must be safe for concurrent use and must never hand out a
// draft that is shared with the stored copy.
type HeldBillRepository interface {
	// Hold captures draft. An empty label is replaced by "Hold <n>" where n is
	// one more than the number of bills currently held.
	Hold(ctx context.Context, id, label string, heldBy uuid.UUID, draft *entity.BillDraft) (*entity.HeldBill, error)
	// List returns the held bills oldest first without removing them.
	List(ctx context.Context) ([]*entity.HeldBill, error)
	// Get returns a held bill without removing it.
	Get(ctx context.Context, id string) (*entity.HeldBill, error)
	// Retrieve removes the held bill and returns it. A second call with the
	// same id fails with apperror.ErrNotFound.
	Retrieve(ctx context.Context, id string) (*entity.HeldBill, error)
	// Remove discards the held bill.
	Remove(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
