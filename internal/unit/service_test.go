package unit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

func seeded(t *testing.T, units ...unit.Unit) (*unit.Service, *collection.Memory[unit.Unit]) {
	t.Helper()

	repo := collection.NewMemory[unit.Unit](collection.Units)
	require.NoError(t, repo.Seed(units))

	return unit.NewService(repo), repo
}

func available(barcode, product string) unit.Unit {
	return unit.Unit{Barcode: barcode, ProductID: product, BatchID: "b1", Status: unit.StatusAvailable}
}

func TestService_Add(t *testing.T) {
	type testCase struct {
		name    string
		add     unit.Unit
		wantErr error
		wantLen int
	}

	tests := []testCase{
		{
			name:    "Success",
			add:     available("SHOE-02", "P"),
			wantLen: 2,
		},
		{
			name:    "DuplicateBarcode",
			add:     available("SHOE-01", "P"),
			wantErr: apperr.ErrDuplicateOrInvalidCode,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := seeded(t, available("SHOE-01", "P"))

			err := svc.Add(context.Background(), tt.add)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			all, err := svc.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, tt.wantLen)
		})
	}
}

func TestService_ListByProductKeepsStoreOrder(t *testing.T) {
	svc, _ := seeded(t,
		available("A-01", "A"),
		available("B-01", "B"),
		available("A-02", "A"),
	)

	got, err := svc.ListByProduct(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A-01", got[0].Barcode)
	assert.Equal(t, "A-02", got[1].Barcode)
}

func TestService_Get(t *testing.T) {
	svc, _ := seeded(t, available("A-01", "A"))

	u, err := svc.Get(context.Background(), "A-01")
	require.NoError(t, err)
	assert.Equal(t, "A", u.ProductID)

	_, err = svc.Get(context.Background(), "Z-01")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t, available("A-01", "A"))

	u, err := svc.SetStatus(ctx, "A-01", unit.Available(), unit.Sold("o1"))
	require.NoError(t, err)
	assert.Equal(t, unit.StatusSold, u.Status)
	assert.Equal(t, "o1", u.OrderID)

	// The unit is no longer available, so the same swap loses.
	_, err = svc.SetStatus(ctx, "A-01", unit.Available(), unit.Sold("o2"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.SetStatus(ctx, "A-01", unit.Sold("o1"), unit.State{Status: unit.StatusSold})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SetStatus(ctx, "missing", unit.Available(), unit.Sold("o1"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_CompareAndSwapSkipsMovedUnits(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t, available("A-01", "A"), available("A-02", "A"))

	_, err := svc.SetStatus(ctx, "A-02", unit.Available(), unit.Sold("other"))
	require.NoError(t, err)

	skipped, err := svc.CompareAndSwap(ctx,
		unit.Swap{Barcode: "A-01", From: unit.Available(), To: unit.Sold("o1")},
		unit.Swap{Barcode: "A-02", From: unit.Available(), To: unit.Sold("o1")},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-02"}, skipped)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, unit.Summary{Total: 2, Available: 0, Sold: 2}, sum)
}

func TestService_PersistenceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := collection.NewMockRepository[unit.Unit](ctrl)
	repo.EXPECT().Load(gomock.Any()).Return(collection.Snapshot[unit.Unit]{}, apperr.Persistence("loading units", errors.New("io")))

	svc := unit.NewService(repo)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}
