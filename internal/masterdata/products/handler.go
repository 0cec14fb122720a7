package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/observability"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := shared.ParseListFilters(r)
	if err != nil {
		shared.Fail(h.logger, w, "list products failed", err)
		return
	}
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.Fail(h.logger, w, "list products failed", err)
		return
	}
	shared.RespondList(w, items, filters, total)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "get product failed", err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get product failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "create product failed", err)
		return
	}
	created, err := h.service.Create(r.Context(), form)
	h.metrics.ObserveMutation("products", "create", err)
	if err != nil {
		shared.Fail(h.logger, w, "create product failed", err)
		return
	}
	shared.RespondItem(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "update product failed", err)
		return
	}
	var form ProductForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "update product failed", err, "id", id)
		return
	}
	updated, err := h.service.Update(r.Context(), id, form)
	h.metrics.ObserveMutation("products", "update", err)
	if err != nil {
		shared.Fail(h.logger, w, "update product failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "delete product failed", err)
		return
	}
	err = h.service.Delete(r.Context(), id)
	h.metrics.ObserveMutation("products", "delete", err)
	if err != nil {
		shared.Fail(h.logger, w, "delete product failed", err, "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
