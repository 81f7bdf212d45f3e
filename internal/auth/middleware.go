package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/shared"
)

// Middleware authenticates bearer tokens.
type Middleware struct {
	Tokens      *TokenIssuer
	Revocations Revocations
	Logger      *slog.Logger
}

// Authenticate requires a valid, unrevoked bearer token and stores the principal in context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, m.Logger, ErrMissingToken)
			return
		}
		principal, _, err := m.Tokens.Parse(raw)
		if err != nil {
			httpx.RespondError(w, m.Logger, err)
			return
		}
		if m.Revocations != nil {
			revoked, err := m.Revocations.IsRevoked(r.Context(), principal.TokenID)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			if revoked {
				httpx.RespondError(w, m.Logger, ErrInvalidToken)
				return
			}
		}
		principal.Role = shared.NormalizeRole(principal.Role)
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
