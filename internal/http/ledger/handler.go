package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/stockroom/internal/http/respond"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
)

type Handler struct {
	svc     *ledger.Service
	sources map[ledger.Kind]ledger.SourceProvider
}

// NewHandler serves the ledger. sources are the live orders and sales that
// a reconcile rebuilds the derived entries from.
func NewHandler(svc *ledger.Service, sources map[ledger.Kind]ledger.SourceProvider) *Handler {
	return &Handler{svc: svc, sources: sources}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/reconcile", h.reconcile)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, book)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ReconcileAll(r.Context(), h.sources)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, reports)
}
