package batch

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/batch"
	"github.com/MrJamesThe3rd/stockroom/internal/http/respond"
)

type Handler struct {
	svc     *batch.Service
	tracker *batch.Tracker
}

func NewHandler(svc *batch.Service, tracker *batch.Tracker) *Handler {
	return &Handler{svc: svc, tracker: tracker}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importPlan)
	r.Get("/{id}", h.get)
	r.Get("/{id}/progress", h.progress)
	r.Get("/{id}/barcodes", h.barcodes)
	r.Post("/{id}/admit", h.admit)
}

type createBatchRequest struct {
	BaseCode     string          `json:"baseCode"`
	ProductID    string          `json:"productId"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int             `json:"quantity"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	b, err := h.svc.Create(r.Context(), batch.CreateParams{
		BaseCode:     req.BaseCode,
		ProductID:    req.ProductID,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Quantity:     req.Quantity,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, b)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	batches, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	if batches == nil {
		batches = []batch.Batch{}
	}

	respond.JSON(w, http.StatusOK, batches)
}

type importResponse struct {
	Imported int           `json:"imported"`
	Batches  []batch.Batch `json:"batches"`
}

func (h *Handler) importPlan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, apperr.Validation("failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	batches, err := h.svc.ImportPlan(r.Context(), file)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(batches), Batches: batches})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, b)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.tracker.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) barcodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.tracker.ExpectedBarcodes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, codes)
}

type admitRequest struct {
	Code string `json:"code"`
}

func (h *Handler) admit(w http.ResponseWriter, r *http.Request) {
	var req admitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	res, err := h.tracker.Admit(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, res)
}
