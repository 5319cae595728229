package unit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	unitHandler "github.com/MrJamesThe3rd/stockroom/internal/http/unit"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()

	repo := collection.NewMemory[unit.Unit](collection.Units)
	require.NoError(t, repo.Seed([]unit.Unit{
		{Barcode: "P-01", ProductID: "P", BatchID: "b1", Status: unit.StatusSold, OrderID: "O1"},
		{Barcode: "P-02", ProductID: "P", BatchID: "b1", Status: unit.StatusAvailable},
		{Barcode: "Q-01", ProductID: "Q", BatchID: "b2", Status: unit.StatusAvailable},
	}))

	r := chi.NewRouter()
	r.Route("/units", unitHandler.NewHandler(unit.NewService(repo)).Routes)

	return r
}

func TestHandler(t *testing.T) {
	type testCase struct {
		name   string
		target string
		status int
		body   string
	}

	tests := []testCase{
		{name: "Summary", target: "/units/summary", status: http.StatusOK, body: `{"total":3,"available":2,"sold":1}`},
		{name: "ByOrder", target: "/units?order_id=O1", status: http.StatusOK},
		{name: "NoMatch", target: "/units?product_id=Z", status: http.StatusOK, body: `[]`},
		{name: "Get", target: "/units/Q-01", status: http.StatusOK},
		{name: "Unknown", target: "/units/Z-01", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)

			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestHandler_ListByProduct(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/units?product_id=P", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"P-01"`)
	assert.Contains(t, rec.Body.String(), `"P-02"`)
	assert.NotContains(t, rec.Body.String(), `"Q-01"`)
}
