package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

func TestAllocator_AllocateTakesStoredOrder(t *testing.T) {
	ctx := context.Background()
	units := stock("P", 3)
	units[0], units[2] = units[2], units[0]

	e := newEnv(t, units)

	alloc, err := e.alloc.Allocate(ctx, "O1", []order.Item{{ID: "l1", ProductID: "P", Qty: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"P-03", "P-02"}, alloc.Items[0].Barcodes)
	assert.Zero(t, alloc.Released)
}

func TestAllocator_PinnedBarcodes(t *testing.T) {
	type testCase struct {
		name     string
		barcodes []string
		err      error
	}

	tests := []testCase{
		{name: "Available", barcodes: []string{"P-03", "P-01"}},
		{name: "AlreadySold", barcodes: []string{"P-02", "P-03"}, err: apperr.ErrInsufficientStock},
		{name: "OtherProduct", barcodes: []string{"Q-01", "P-03"}, err: apperr.ErrInsufficientStock},
		{name: "Repeated", barcodes: []string{"P-01", "P-01"}, err: apperr.ErrInsufficientStock},
		{name: "Unknown", barcodes: []string{"P-09", "P-01"}, err: apperr.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, append(stock("P", 3), stock("Q", 1)...))

			_, err := e.alloc.Allocate(ctx, "O0", []order.Item{{ID: "l0", ProductID: "P", Qty: 1, Barcodes: []string{"P-02"}}})
			require.NoError(t, err)

			before := e.revisions(t)

			alloc, err := e.alloc.Allocate(ctx, "O1", []order.Item{{ID: "l1", ProductID: "P", Qty: 2, Barcodes: tt.barcodes}})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, before, e.revisions(t))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.barcodes, alloc.Items[0].Barcodes)

			for _, bc := range tt.barcodes {
				assert.Equal(t, "O1", e.unit(t, bc).OrderID)
			}
		})
	}
}

func TestAllocator_DeallocateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, stock("P", 3), pendingDefect("D", "Q"))

	alloc, err := e.alloc.Allocate(ctx, "O1", []order.Item{
		{ID: "l1", ProductID: "P", Qty: 2},
		{ID: "l2", IsDefective: true, DefectID: "D", Qty: 1, Price: dec("7")},
	})
	require.NoError(t, err)

	released, err := e.alloc.Deallocate(ctx, "O1", alloc.Items)
	require.NoError(t, err)
	assert.Equal(t, 2, released.Released)
	assert.Equal(t, unit.Summary{Total: 3, Available: 3}, e.summary(t))
	assert.Equal(t, defect.StatusPending, e.defect(t, "D").Status)

	before := e.revisions(t)

	again, err := e.alloc.Deallocate(ctx, "O1", alloc.Items)
	require.NoError(t, err)
	assert.Zero(t, again.Released)
	assert.Equal(t, before, e.revisions(t), "nothing left to release")
}

func TestAllocator_DeallocateLeavesOtherOrders(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, stock("P", 2), pendingDefect("D", "Q"))

	first, err := e.alloc.Allocate(ctx, "O1", []order.Item{{ID: "l1", ProductID: "P", Qty: 1}})
	require.NoError(t, err)

	_, err = e.alloc.Allocate(ctx, "O2", []order.Item{
		{ID: "l2", ProductID: "P", Qty: 1},
		{ID: "l3", IsDefective: true, DefectID: "D", Qty: 1},
	})
	require.NoError(t, err)

	// A stale line naming another order's defect must not revert it.
	items := append(first.Items, order.Item{ID: "x", IsDefective: true, DefectID: "D", Qty: 1})

	_, err = e.alloc.Deallocate(ctx, "O1", items)
	require.NoError(t, err)

	assert.Equal(t, "O2", e.unit(t, "P-02").OrderID)
	assert.Equal(t, defect.StatusSold, e.defect(t, "D").Status)
}

func TestAllocator_DeallocateRevertsLegacyDefect(t *testing.T) {
	ctx := context.Background()

	legacy := pendingDefect("D", "Q")
	legacy.Status = defect.StatusSold
	legacy.SellingPrice = new(dec("3"))
	legacy.SoldAt = new(legacy.CreatedAt)

	e := newEnv(t, nil, legacy)

	_, err := e.alloc.Deallocate(ctx, "O1", []order.Item{{ID: "l1", IsDefective: true, DefectID: "D", Qty: 1}})
	require.NoError(t, err)

	rec := e.defect(t, "D")
	assert.Equal(t, defect.StatusPending, rec.Status)
	assert.True(t, rec.Valid())
}

func TestAllocator_ReconcileRepricesOwnedDefect(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil, pendingDefect("D", "Q"))

	line := order.Item{ID: "l1", IsDefective: true, DefectID: "D", Qty: 1, Price: dec("20")}

	first, err := e.alloc.Allocate(ctx, "O1", []order.Item{line})
	require.NoError(t, err)

	line.Price = dec("25")

	_, err = e.alloc.Reconcile(ctx, "O1", first.Items, []order.Item{line})
	require.NoError(t, err)

	rec := e.defect(t, "D")
	assert.Equal(t, defect.StatusSold, rec.Status)
	assert.Equal(t, "25", rec.SellingPrice.String())
	assert.Equal(t, "O1", rec.OrderID)
}

func TestAllocator_ReconcileMovesStockBetweenLines(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, stock("P", 2))

	first, err := e.alloc.Allocate(ctx, "O1", []order.Item{
		{ID: "a", ProductID: "P", Qty: 2},
	})
	require.NoError(t, err)

	// The first line shrinks before the new line fills, so the freed unit is
	// available to it within the same call.
	alloc, err := e.alloc.Reconcile(ctx, "O1", first.Items, []order.Item{
		{ID: "a", ProductID: "P", Qty: 1},
		{ID: "b", ProductID: "P", Qty: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"P-01"}, alloc.Items[0].Barcodes)
	assert.Equal(t, []string{"P-02"}, alloc.Items[1].Barcodes)
	assert.Equal(t, unit.Summary{Total: 2, Sold: 2}, e.summary(t))
}

func TestAllocator_Undo(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, stock("P", 2), pendingDefect("D", "Q"))

	alloc, err := e.alloc.Allocate(ctx, "O1", []order.Item{
		{ID: "l1", ProductID: "P", Qty: 2},
		{ID: "l2", IsDefective: true, DefectID: "D", Qty: 1, Price: dec("4")},
	})
	require.NoError(t, err)

	// P-02 moves on before the undo and must keep its new owner.
	_, err = unit.NewService(e.units).CompareAndSwap(ctx, unit.Swap{Barcode: "P-02", From: unit.Sold("O1"), To: unit.Sold("O9")})
	require.NoError(t, err)

	require.NoError(t, e.alloc.Undo(ctx, alloc))

	p1 := e.unit(t, "P-01")
	assert.True(t, p1.IsAvailable())
	assert.Equal(t, "O9", e.unit(t, "P-02").OrderID)

	rec := e.defect(t, "D")
	assert.Equal(t, defect.StatusPending, rec.Status)
	assert.True(t, rec.Valid())

	assert.NoError(t, e.alloc.Undo(ctx, nil))
}
