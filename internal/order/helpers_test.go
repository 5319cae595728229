package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

type env struct {
	units   *collection.Memory[unit.Unit]
	defects *collection.Memory[defect.Record]
	orders  *collection.Memory[order.Order]
	ledger  *ledger.Service
	alloc   *order.Allocator
	svc     *order.Service
}

func newEnv(t *testing.T, units []unit.Unit, defects ...defect.Record) *env {
	t.Helper()

	e := &env{
		units:   collection.NewMemory[unit.Unit](collection.Units),
		defects: collection.NewMemory[defect.Record](collection.Defects),
		orders:  collection.NewMemory[order.Order](collection.Orders),
	}

	require.NoError(t, e.units.Seed(units))
	require.NoError(t, e.defects.Seed(defects))

	locker := lock.NewLocal()
	e.ledger = ledger.NewService(collection.NewMemory[ledger.Entry](collection.Ledger), locker, zap.NewNop())
	e.alloc = order.NewAllocator(e.units, e.defects, nil, zap.NewNop())
	e.svc = order.NewService(order.KindOrder, e.orders, e.alloc, e.ledger, locker, nil, zap.NewNop())

	return e
}

// stock returns n available units of product with barcodes product-01..n.
func stock(product string, n int) []unit.Unit {
	out := make([]unit.Unit, 0, n)
	for _, code := range ident.Barcodes(product, n) {
		out = append(out, unit.Unit{
			Barcode:      code,
			ProductID:    product,
			BatchID:      "b-" + product,
			SellingPrice: decimal.NewFromInt(10),
			Status:       unit.StatusAvailable,
			Location:     "Main Warehouse",
			AdmittedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	return out
}

func pendingDefect(id, product string) defect.Record {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	return defect.Record{ID: id, ProductID: product, Status: defect.StatusPending, CreatedAt: at, UpdatedAt: at}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func draft(id string, items ...fields.Record) order.Draft {
	return order.Draft{ID: id, Items: items}
}

func line(product string, qty int) fields.Record {
	return fields.Record{"productId": product, "qty": qty, "price": "10"}
}

func (e *env) unit(t *testing.T, barcode string) unit.Unit {
	t.Helper()

	u, err := unit.NewService(e.units).Get(context.Background(), barcode)
	require.NoError(t, err)

	return *u
}

func (e *env) defect(t *testing.T, id string) defect.Record {
	t.Helper()

	rec, err := defect.NewService(e.defects).Get(context.Background(), id)
	require.NoError(t, err)

	return *rec
}

func (e *env) revisions(t *testing.T) [3]int64 {
	t.Helper()

	ctx := context.Background()

	u, err := e.units.Load(ctx)
	require.NoError(t, err)

	d, err := e.defects.Load(ctx)
	require.NoError(t, err)

	o, err := e.orders.Load(ctx)
	require.NoError(t, err)

	return [3]int64{u.Revision, d.Revision, o.Revision}
}

func (e *env) summary(t *testing.T) unit.Summary {
	t.Helper()

	s, err := unit.NewService(e.units).Summary(context.Background())
	require.NoError(t, err)

	return s
}
