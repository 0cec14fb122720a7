package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/observability"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
	legacy  bool
}

// NewHandler builds the category handler. With legacy set, List answers
// with a bare JSON array of every matching category, as older deployments did.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics, legacy bool) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, legacy: legacy}
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
		shared.Fail(h.logger, w, "list categories failed", err)
		return
	}
	if h.legacy {
		filters.Page, filters.Limit = 1, 0
	}
	categories, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.Fail(h.logger, w, "list categories failed", err)
		return
	}
	if h.legacy {
		httpx.JSON(w, http.StatusOK, categories)
		return
	}
	shared.RespondList(w, categories, filters, total)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "get category failed", err)
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get category failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, category)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "create category failed", err)
		return
	}
	created, err := h.service.Create(r.Context(), form)
	h.metrics.ObserveMutation("categories", "create", err)
	if err != nil {
		shared.Fail(h.logger, w, "create category failed", err)
		return
	}
	shared.RespondItem(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "update category failed", err)
		return
	}
	var form CategoryForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "update category failed", err, "id", id)
		return
	}
	updated, err := h.service.Update(r.Context(), id, form)
	h.metrics.ObserveMutation("categories", "update", err)
	if err != nil {
		shared.Fail(h.logger, w, "update category failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "delete category failed", err)
		return
	}
	err = h.service.Delete(r.Context(), id)
	h.metrics.ObserveMutation("categories", "delete", err)
	if err != nil {
		shared.Fail(h.logger, w, "delete category failed", err, "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
