package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/app"
	"github.com/MrJamesThe3rd/stockroom/internal/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/config"
	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
)

func TestNew_MemoryStorage(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Storage: config.StorageMemory}
	cfg.Inventory.DefaultLocation = "Main Warehouse"

	a, err := app.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)

	b, err := a.Batches.Create(ctx, batch.CreateParams{BaseCode: "CAP", ProductID: "P", Quantity: 1})
	require.NoError(t, err)

	res, err := a.Tracker.Admit(ctx, b.ID, "CAP-01")
	require.NoError(t, err)
	assert.Equal(t, "Main Warehouse", res.Unit.Location)

	_, err = a.Orders.Create(ctx, order.Draft{ID: "O1", Items: []fields.Record{{"productId": "P", "price": 12}}})
	require.NoError(t, err)

	// Orders and sales share the unit store.
	_, err = a.Sales.Create(ctx, order.Draft{ID: "S1", Items: []fields.Record{{"productId": "P"}}})
	require.Error(t, err)

	reports, err := a.Ledger.ReconcileAll(ctx, a.LedgerSources())
	require.NoError(t, err)
	assert.Equal(t, []ledger.ReconcileReport{
		{Kind: ledger.KindOrder, Upserted: 1},
		{Kind: ledger.KindSale},
	}, reports)
}
