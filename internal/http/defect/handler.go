package defect

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/http/respond"
	"github.com/MrJamesThe3rd/stockroom/internal/validate"
)

type Handler struct {
	svc *defect.Service
}

func NewHandler(svc *defect.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.register)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type registerRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	Barcode     string `json:"barcode"`
	Description string `json:"description"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, err)
		return
	}

	rec, err := h.svc.Register(r.Context(), defect.RegisterParams{
		ProductID:   req.ProductID,
		Barcode:     req.Barcode,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var status *defect.Status

	if s := r.URL.Query().Get("status"); s != "" {
		st := defect.Status(s)
		if st != defect.StatusPending && st != defect.StatusSold {
			respond.Error(w, apperr.Validation("status must be %s or %s", defect.StatusPending, defect.StatusSold))
			return
		}

		status = &st
	}

	recs, err := h.svc.List(r.Context(), status)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if recs == nil {
		recs = []defect.Record{}
	}

	respond.JSON(w, http.StatusOK, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, rec)
}
