package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /api/users routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUsersView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.With(h.rbac.RequireAny(shared.PermUsersManage)).Patch("/{id}/active", h.setActive)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", u)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var in ActiveInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.SetActive(r.Context(), actor, id, *in.IsActive); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	msg := "User deactivated successfully"
	if *in.IsActive {
		msg = "User activated successfully"
	}
	httpx.OK(w, msg, nil)
}

// ProfileHandler serves the caller's own profile under /api/profile.
type ProfileHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewProfileHandler builds ProfileHandler.
func NewProfileHandler(logger *slog.Logger, service *Service) *ProfileHandler {
	return &ProfileHandler{logger: logger, service: service}
}

// MountRoutes registers profile routes. Callers must already be authenticated.
func (h *ProfileHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.profile)
	r.Get("/basic", h.basic)
	r.Put("/", h.update)
	r.Put("/password", h.changePassword)
}

func (h *ProfileHandler) profile(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	u, err := h.service.Profile(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", u)
}

func (h *ProfileHandler) basic(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	b, err := h.service.BasicProfile(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "", b)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	var in ProfileInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	u, err := h.service.UpdateProfile(r.Context(), p, in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Profile updated successfully", u)
}

func (h *ProfileHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in PasswordInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	p, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), p, in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, "Password changed successfully", nil)
}
