package settlement

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

// Handler exposes the settlement engine over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	currency string
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, currency string) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, currency: currency}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsView))
		r.Get("/statistics", h.statistics)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsManage))
		r.Post("/monthly", h.createMonthly)
		r.Patch("/{id}/status", h.updateStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPaymentsSpotCash))
		r.Post("/spot-cash", h.createSpotCash)
	})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", stats)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := PaymentFilter{
		Month:  q.Get("month"),
		Type:   PaymentType(q.Get("payment_type")),
		Status: PaymentStatus(q.Get("status")),
	}
	if raw := q.Get("supplier_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.RespondError(w, h.logger, shared.NewValidationError("supplier_id", "must be a positive integer"))
			return
		}
		filter.SupplierID = id
	}
	payments, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", payments)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", payment)
}

func (h *Handler) createMonthly(w http.ResponseWriter, r *http.Request) {
	var in MonthlyPaymentInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		in.ActorID = p.UserID
	}
	payment, err := h.service.CreateMonthlyPayment(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Created(w, "Monthly payment processed successfully", payment)
}

func (h *Handler) createSpotCash(w http.ResponseWriter, r *http.Request) {
	var in SpotCashInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		in.ActorID = p.UserID
	}
	result, err := h.service.CreateSpotCashPayment(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	msg := fmt.Sprintf("Spot cash payment of %s processed successfully", shared.FormatMoney(h.currency, result.Payment.Amount))
	httpx.Created(w, msg, result)
}

type statusRequest struct {
	Status PaymentStatus `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	updated, err := h.service.UpdatePaymentStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if !updated {
		httpx.RespondError(w, h.logger, ErrPaymentNotFound)
		return
	}
	httpx.OK(w, "Payment status updated successfully", nil)
}
