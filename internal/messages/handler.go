package messages

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/shared"
)

// Handler serves /api/messages.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers message routes. Callers must already be authenticated.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.conversations)
	r.Get("/chat/{userID}", h.chat)
	r.Post("/send", h.send)
	r.Patch("/{id}/read", h.markRead)
	r.Post("/mark-all-read/{userID}", h.markAllRead)
}

func (h *Handler) conversations(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	items, err := h.service.Conversations(r.Context(), p.UserID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	other, err := httpx.IDParam(r, "userID")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	items, err := h.service.Chat(r.Context(), p.UserID, other)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var in SendInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	m, err := h.service.Send(r.Context(), p.UserID, in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Created(w, "Message sent successfully", m)
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
	httpx.OK(w, "Message marked as read", nil)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	sender, err := httpx.IDParam(r, "userID")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.MarkAllRead(r.Context(), p.UserID, sender); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "All messages marked as read", nil)
}
