package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
)

type heldBillRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	order []string
	bills map[string]*entity.HeldBill
	holds int // ever held, never decremented; numbers default labels
}

// NewHeldBillRepository creates an in-memory held bill store. Every instance
// owns its own bills.
func NewHeldBillRepository(clk clock.Clock) domainRepo.HeldBillRepository {
	return &heldBillRepository{
		clock: clk,
		bills: make(map[string]*entity.HeldBill),
	}
}

func (r *heldBillRepository) Hold(ctx context.Context, id, label string, heldBy uuid.UUID, draft *entity.BillDraft) (*entity.HeldBill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bills[id]; exists {
		return nil, apperror.NewConflictError(fmt.Sprintf("Held bill %s already exists", id))
	}
	r.holds++
	if label == "" {
		label = fmt.Sprintf("Hold %d", r.holds)
	}

	held := entity.NewHeldBill(id, label, heldBy, r.clock.Now(), draft)
	r.bills[id] = held
	r.order = append(r.order, id)
	return held.Clone(), nil
}

func (r *heldBillRepository) List(ctx context.Context) ([]*entity.HeldBill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.HeldBill, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bills[id].Clone())
	}
	return out, nil
}

func (r *heldBillRepository) Get(ctx context.Context, id string) (*entity.HeldBill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	held, ok := r.bills[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Held bill")
	}
	return held.Clone(), nil
}

func (r *heldBillRepository) Retrieve(ctx context.Context, id string) (*entity.HeldBill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	held, ok := r.bills[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Held bill")
	}
	r.deleteLocked(id)
	return held, nil
}

func (r *heldBillRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bills[id]; !ok {
		return apperror.NewNotFoundError("Held bill")
	}
	r.deleteLocked(id)
	return nil
}

func (r *heldBillRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

func (r *heldBillRepository) deleteLocked(id string) {
	delete(r.bills, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
