package rbac

import (
	"log/slog"
	"net/http"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/shared"
)

var errInsufficientPermissions = shared.NewKindError(shared.ErrForbidden, "Access denied. Insufficient permissions.")

// Middleware gates handlers on the permissions of the authenticated principal.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny admits principals holding at least one of perms.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.gate(perms, func(granted permissionSet, required []string) bool {
		for _, p := range required {
			if granted.has(p) {
				return true
			}
		}
		return false
	})
}

// RequireAll admits principals holding every one of perms.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.gate(perms, func(granted permissionSet, required []string) bool {
		for _, p := range required {
			if !granted.has(p) {
				return false
			}
		}
		return true
	})
}

func (m Middleware) gate(perms []string, allowed func(permissionSet, []string) bool) func(http.Handler) http.Handler {
	required := newPermissionSet(perms).sorted()
	return func(next http.Handler) http.Handler {
		if len(required) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, shared.ErrUnauthorized)
				return
			}
			if granted, known := m.Service.grantsFor(principal.Role); known && allowed(granted, required) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.Int64("user_id", principal.UserID),
					slog.String("role", principal.Role),
					slog.Any("required", required),
					slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, m.Logger, errInsufficientPermissions)
		})
	}
}
