package customers

import (
	"log/slog"
	"net/http"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := shared.ParseListFilters(r)
	if err != nil {
		shared.Fail(h.logger, w, "list customers failed", err)
		return
	}
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.Fail(h.logger, w, "list customers failed", err)
		return
	}
	shared.RespondList(w, items, filters, total)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "get customer failed", err)
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get customer failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, customer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form CustomerForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "create customer failed", err)
		return
	}
	created, err := h.service.Create(r.Context(), form)
	h.metrics.ObserveMutation("customers", "create", err)
	if err != nil {
		shared.Fail(h.logger, w, "create customer failed", err)
		return
	}
	h.logger.Info("customer created", "id", created.ID, "code", created.Code)
	shared.RespondItem(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "update customer failed", err)
		return
	}
	var form CustomerForm
	if err := shared.DecodeBody(r, &form); err != nil {
		shared.Fail(h.logger, w, "update customer failed", err, "id", id)
		return
	}
	updated, err := h.service.Update(r.Context(), id, form)
	h.metrics.ObserveMutation("customers", "update", err)
	if err != nil {
		shared.Fail(h.logger, w, "update customer failed", err, "id", id)
		return
	}
	shared.RespondItem(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r)
	if err != nil {
		shared.Fail(h.logger, w, "delete customer failed", err)
		return
	}
	err = h.service.Delete(r.Context(), id)
	h.metrics.ObserveMutation("customers", "delete", err)
	if err != nil {
		shared.Fail(h.logger, w, "delete customer failed", err, "id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
