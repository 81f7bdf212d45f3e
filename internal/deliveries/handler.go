package deliveries

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes delivery endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers delivery routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermDeliveriesView))
		r.Get("/", h.list)
		r.Get("/supplier/{supplierID}", h.listBySupplier)
		r.Get("/monthly-summary/{month}", h.monthlySummary)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReportsExport))
		r.Get("/monthly-summary/{month}/export", h.exportMonthlySummary)
	})
	r.With(h.rbac.RequireAny(shared.PermDeliveriesRecord)).Post("/", h.create)
	r.With(h.rbac.RequireAny(shared.PermDeliveriesEdit)).Put("/{id}", h.update)
	r.With(h.rbac.RequireAny(shared.PermDeliveriesDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter Filter
	fields := map[string]string{}
	if raw := q.Get("supplier_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fields["supplier_id"] = "must be a positive integer"
		}
		filter.SupplierID = id
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			fields["start_date"] = "must be YYYY-MM-DD"
		}
		filter.StartDate = t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			fields["end_date"] = "must be YYYY-MM-DD"
		}
		filter.EndDate = t
	}
	if len(fields) > 0 {
		httpx.RespondError(w, h.logger, &shared.ValidationError{Fields: fields})
		return
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) listBySupplier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "supplierID")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	items, err := h.service.ListBySupplier(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) monthlySummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.MonthlySummary(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", rows)
}

func (h *Handler) exportMonthlySummary(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	var buf bytes.Buffer
	if err := h.service.ExportMonthlySummary(r.Context(), month, &buf); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="deliveries-%s.xlsx"`, month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", d)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	d, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Created(w, "Delivery recorded successfully", d)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	d, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Delivery updated successfully", d)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Delivery deleted successfully", nil)
}
