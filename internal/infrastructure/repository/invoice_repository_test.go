package repository

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, cashier uuid.UUID, at time.Time, name string, method enum.PaymentMethod) *entity.Invoice {
	t.Helper()
	d := draftWith(t, name, 1, 100)
	inv, err := entity.NewInvoice(uuid.New(), cashier, at, d, entity.PaymentDetails{
		Method:         method,
		AmountTendered: 500,
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceRepositoryAppendNumbersSequentially(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), DefaultInvoiceNumbering())
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := newTestInvoice(t, uuid.New(), at, "Paracetamol", enum.PaymentMethodCash)
	second := newTestInvoice(t, uuid.New(), at, "ORS", enum.PaymentMethodCard)
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	assert.Equal(t, "INV00001", first.InvoiceNo)
	assert.Equal(t, "INV00002", second.InvoiceNo)

	last, err := repo.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)

	got, err := repo.GetByInvoiceNo(ctx, "INV00002")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	got, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV00001", got.InvoiceNo)
}

func TestInvoiceRepositoryRejectsDuplicateWithoutConsumingNumber(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), InvoiceNumbering{Prefix: "B-", Width: 3})
	ctx := context.Background()
	inv := newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)

	require.NoError(t, repo.Append(ctx, inv))
	assert.Equal(t, "B-001", inv.InvoiceNo)

	dup := inv.Clone()
	assert.ErrorIs(t, repo.Append(ctx, dup), apperror.ErrConflict)

	last, _ := repo.LastSequence(ctx)
	assert.Equal(t, int64(1), last)
}

func TestInvoiceRepositoryStoredCopyIsImmutable(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), DefaultInvoiceNumbering())
	ctx := context.Background()
	inv := newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)
	require.NoError(t, repo.Append(ctx, inv))

	inv.Items[0].Quantity = 99
	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	got.Total = 0

	again, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, int64(118), again.Total)
}

func TestInvoiceRepositoryNotFound(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), DefaultInvoiceNumbering())
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = repo.GetByInvoiceNo(ctx, "INV00001")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInvoiceRepositorySearch(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), DefaultInvoiceNumbering())
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, newTestInvoice(t, alice, day, "Paracetamol", enum.PaymentMethodCash)))
	require.NoError(t, repo.Append(ctx, newTestInvoice(t, bob, day.Add(time.Hour), "ORS", enum.PaymentMethodUPI)))
	require.NoError(t, repo.Append(ctx, newTestInvoice(t, alice, day.AddDate(0, 0, 1), "Paracetamol", enum.PaymentMethodCard)))

	t.Run("most recent first", func(t *testing.T) {
		items, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 3)
		assert.Equal(t, "INV00003", items[0].InvoiceNo)
		assert.Equal(t, "INV00001", items[2].InvoiceNo)
	})

	t.Run("term", func(t *testing.T) {
		items, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{Search: "paracetamol"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "INV00003", items[0].InvoiceNo)
	})

	t.Run("invoice number", func(t *testing.T) {
		items, _, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{Search: "inv00002"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, bob, items[0].CashierID)
	})

	t.Run("payment method and cashier", func(t *testing.T) {
		method := enum.PaymentMethodCash
		_, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{PaymentMethod: &method})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.Search(ctx, &domainRepo.InvoiceFilterParams{CashierID: &alice})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("date range", func(t *testing.T) {
		end := day.AddDate(0, 0, 1)
		_, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{StartDate: &day, EndDate: &end})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("pagination", func(t *testing.T) {
		items, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{
			Pagination: &pagination.PaginationParams{Page: 2, PerPage: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 1)
		assert.Equal(t, "INV00001", items[0].InvoiceNo)
	})

	t.Run("page past the end", func(t *testing.T) {
		items, _, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{
			Pagination: &pagination.PaginationParams{Page: 9, PerPage: 2},
		})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("page large enough to overflow the offset", func(t *testing.T) {
		items, total, err := repo.Search(ctx, &domainRepo.InvoiceFilterParams{
			Pagination: &pagination.PaginationParams{Page: math.MaxInt/100 + 2, PerPage: 100},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, items)
	})
}

func TestInvoiceRepositoryNumberingSurvivesRestart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	before := NewInvoiceRepository(db, DefaultInvoiceNumbering())
	first := newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)
	require.NoError(t, before.Append(ctx, first))

	after := NewInvoiceRepository(db, DefaultInvoiceNumbering())
	last, err := after.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)

	second := newTestInvoice(t, uuid.New(), time.Now(), "Paracetamol", enum.PaymentMethodUPI)
	require.NoError(t, after.Append(ctx, second))
	assert.Equal(t, "INV00002", second.InvoiceNo)

	got, err := after.GetByInvoiceNo(ctx, "INV00001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "ORS", got.Items[0].Name)
}

func TestInvoiceRepositoryPrefixesNumberIndependently(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	inv := NewInvoiceRepository(db, DefaultInvoiceNumbering())
	b := NewInvoiceRepository(db, InvoiceNumbering{Prefix: "B-", Width: 3})

	require.NoError(t, inv.Append(ctx, newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)))
	other := newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)
	require.NoError(t, b.Append(ctx, other))

	assert.Equal(t, "B-001", other.InvoiceNo)
}

func TestInvoiceRepositoryConcurrentAppendHasNoGaps(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t), DefaultInvoiceNumbering())
	ctx := context.Background()

	invoices := make([]*entity.Invoice, 50)
	for i := range invoices {
		invoices[i] = newTestInvoice(t, uuid.New(), time.Now(), "ORS", enum.PaymentMethodCash)
	}

	var wg sync.WaitGroup
	for _, inv := range invoices {
		wg.Add(1)
		go func(inv *entity.Invoice) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, inv))
		}(inv)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, inv := range invoices {
		seen[inv.Sequence] = true
	}
	assert.Len(t, seen, 50)
	for i := int64(1); i <= 50; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}
