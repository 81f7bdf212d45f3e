package notifications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

// Handler serves /api/notifications.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers notification routes. Callers must already be authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/mark-all-read", h.markAllRead)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/read", h.markRead)
	r.Delete("/{id}", h.delete)
	r.With(h.rbac.RequireAny(shared.PermNotificationsBroadcast)).Post("/", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	q := r.URL.Query()
	filter := Filter{UserID: p.UserID, Type: q.Get("type")}
	filter.UnreadOnly, _ = strconv.ParseBool(q.Get("unreadOnly"))
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.RespondError(w, h.logger, shared.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	n, err := h.service.UnreadCount(r.Context(), p.UserID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", map[string]int{"count": n})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	n, err := h.service.Get(r.Context(), p.UserID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", n)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), p.UserID, id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Notification marked as read", nil)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.MarkAllRead(r.Context(), p.UserID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "All notifications marked as read", nil)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	n, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Created(w, "Notification created successfully", n)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	canBroadcast := h.rbac.Service != nil && h.rbac.Service.Can(r.Context(), p.Role, shared.PermNotificationsBroadcast)
	if err := h.service.Delete(r.Context(), p.UserID, id, canBroadcast); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Notification deleted successfully", nil)
}
