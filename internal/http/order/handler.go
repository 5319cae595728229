package order

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/http/respond"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
)

// Handler serves one order kind. The API mounts one for /orders and one for
// /sales.
type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the handlers. Update and delete accept the id either in
// the path or as ?id= on the collection path.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/", h.update)
	r.Delete("/", h.delete)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body fields.Record
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, err)
		return
	}

	draft, err := order.DraftFromRecord(body)
	if err != nil {
		respond.Error(w, err)
		return
	}

	o, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(o))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(orders))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var body fields.Record
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, err)
		return
	}

	patch, err := order.PatchFromRecord(body)
	if err != nil {
		respond.Error(w, err)
		return
	}

	o, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func orderID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}

	if id == "" {
		return "", apperr.Validation("id is required")
	}

	return id, nil
}
