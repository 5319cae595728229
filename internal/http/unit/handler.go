package unit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/stockroom/internal/http/respond"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

type Handler struct {
	svc *unit.Service
}

func NewHandler(svc *unit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/{barcode}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		units []unit.Unit
		err   error
		q     = r.URL.Query()
	)

	switch {
	case q.Get("product_id") != "":
		units, err = h.svc.ListByProduct(r.Context(), q.Get("product_id"))
	case q.Get("batch_id") != "":
		units, err = h.svc.ListByBatch(r.Context(), q.Get("batch_id"))
	case q.Get("order_id") != "":
		units, err = h.svc.ListByOrder(r.Context(), q.Get("order_id"))
	default:
		units, err = h.svc.List(r.Context())
	}

	if err != nil {
		respond.Error(w, err)
		return
	}

	if units == nil {
		units = []unit.Unit{}
	}

	respond.JSON(w, http.StatusOK, units)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, s)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, u)
}
