package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	ledgerHandler "github.com/MrJamesThe3rd/stockroom/internal/http/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
)

type sources []ledger.Source

func (s sources) Sources(context.Context) ([]ledger.Source, error) { return s, nil }

type broken struct{}

func (broken) Sources(context.Context) ([]ledger.Source, error) { return nil, errors.New("offline") }

func TestHandler_ReconcileThenList(t *testing.T) {
	svc := ledger.NewService(collection.NewMemory[ledger.Entry](collection.Ledger), lock.NewLocal(), zap.NewNop())

	r := chi.NewRouter()
	r.Route("/ledger", ledgerHandler.NewHandler(svc, map[ledger.Kind]ledger.SourceProvider{
		ledger.KindOrder: sources{{ID: "o1", Kind: ledger.KindOrder, Items: []fields.Record{{"price": 4, "qty": 2}}}},
		ledger.KindSale:  sources{},
	}).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ledger/reconcile", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"kind":"order","removed":0,"upserted":1},{"kind":"sale","removed":0,"upserted":0}]`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var book ledger.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	require.Len(t, book.Income, 1)
	assert.Equal(t, "order-o1", book.Income[0].ID)
	assert.Equal(t, "8", book.Income[0].Amount.String())
	assert.Empty(t, book.Expenses)
}

func TestHandler_ReconcileFailure(t *testing.T) {
	svc := ledger.NewService(collection.NewMemory[ledger.Entry](collection.Ledger), lock.NewLocal(), zap.NewNop())

	r := chi.NewRouter()
	r.Route("/ledger", ledgerHandler.NewHandler(svc, map[ledger.Kind]ledger.SourceProvider{ledger.KindOrder: broken{}}).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ledger/reconcile", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
