package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	batchHandler "github.com/MrJamesThe3rd/stockroom/internal/http/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

type fixedLocation string

func (f fixedLocation) Resolve(context.Context) string { return string(f) }

func newServer(t *testing.T) http.Handler {
	t.Helper()

	locker := lock.NewLocal()
	svc := batch.NewService(collection.NewMemory[batch.Batch](collection.Batches), locker)
	units := unit.NewService(collection.NewMemory[unit.Unit](collection.Units))
	tracker := batch.NewTracker(svc, units, fixedLocation("Main Warehouse"), locker, nil, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/batches", batchHandler.NewHandler(svc, tracker).Routes)

	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_CreateAndAdmit(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/batches", `{"baseCode":"SHOE","productId":"P","costPrice":"20","sellingPrice":50,"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b batch.Batch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, batch.AdmittedNo, b.Admitted)

	rec = do(t, h, http.MethodGet, "/batches/"+b.ID+"/barcodes", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["SHOE-01","SHOE-02"]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/batches/"+b.ID+"/admit", `{"code":"SHOE-02"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res batch.AdmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "SHOE-02", res.Unit.Barcode)
	assert.Equal(t, "Main Warehouse", res.Unit.Location)
	assert.Equal(t, []string{"SHOE-01"}, res.Progress.Remaining)

	rec = do(t, h, http.MethodPost, "/batches/"+b.ID+"/admit", `{"code":"SHOE-02"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duplicate_or_invalid_code"`)

	rec = do(t, h, http.MethodPost, "/batches/"+b.ID+"/admit", `{"code":"SHOE-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/batches/"+b.ID+"/admit", `{"code":"SHOE-01"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"batch_complete"`)

	rec = do(t, h, http.MethodGet, "/batches/"+b.ID+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p batch.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, batch.StateComplete, p.State)
	assert.Equal(t, 2, p.Admitted)
}

func TestHandler_CreateValidation(t *testing.T) {
	rec := do(t, newServer(t), http.MethodPost, "/batches", `{"baseCode":"SHOE","productId":"P","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity")
}

func TestHandler_UnknownBatch(t *testing.T) {
	h := newServer(t)

	for _, target := range []string{"/batches/nope", "/batches/nope/progress", "/batches/nope/barcodes"} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestHandler_Import(t *testing.T) {
	h := newServer(t)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "plan.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte("base_code;product_id;cost_price;selling_price;quantity\nSHOE;P;20,00;50,00;3\nBAG;Q;5;9;1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/batches/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"imported":2`)

	rec = do(t, h, http.MethodGet, "/batches", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var batches []batch.Batch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batches))
	assert.Len(t, batches, 2)
}

func TestHandler_ImportWithoutFile(t *testing.T) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/batches/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
