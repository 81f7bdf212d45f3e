package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brewops/brewops/internal/auth"
	"github.com/brewops/brewops/internal/deliveries"
	"github.com/brewops/brewops/internal/inventory"
	"github.com/brewops/brewops/internal/messages"
	"github.com/brewops/brewops/internal/notifications"
	"github.com/brewops/brewops/internal/observability"
	"github.com/brewops/brewops/internal/platform/httpx"
	"github.com/brewops/brewops/internal/rbac"
	"github.com/brewops/brewops/internal/settlement"
	"github.com/brewops/brewops/internal/suppliers"
	"github.com/brewops/brewops/internal/users"
	"github.com/brewops/brewops/jobs"
)

// Pinger reports database reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	DB      Pinger
	Metrics *observability.Metrics
	Authn   auth.Middleware

	AuthHandler          *auth.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	SuppliersHandler     *suppliers.Handler
	DeliveriesHandler    *deliveries.Handler
	PaymentsHandler      *settlement.Handler
	InventoryHandler     *inventory.Handler
	UsersHandler         *users.Handler
	ProfileHandler       *users.ProfileHandler
	NotificationsHandler *notifications.Handler
	MessagesHandler      *messages.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router with BrewOps defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", healthz(params.DB, logger))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		r.Group(func(r chi.Router) {
			r.Use(params.Authn.Authenticate)
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.SuppliersHandler != nil {
				r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			}
			if params.DeliveriesHandler != nil {
				r.Route("/deliveries", params.DeliveriesHandler.MountRoutes)
			}
			if params.PaymentsHandler != nil {
				r.Route("/payments", params.PaymentsHandler.MountRoutes)
			}
			if params.InventoryHandler != nil {
				r.Route("/inventory", params.InventoryHandler.MountRoutes)
			}
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
			if params.ProfileHandler != nil {
				r.Route("/profile", params.ProfileHandler.MountRoutes)
			}
			if params.NotificationsHandler != nil {
				r.Route("/notifications", params.NotificationsHandler.MountRoutes)
			}
			if params.MessagesHandler != nil {
				r.Route("/messages", params.MessagesHandler.MountRoutes)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "Method not allowed")
	})

	return r
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func healthz(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := healthStatus{Status: "ok", Database: "ok"}
		if db == nil {
			out.Database = "unconfigured"
			httpx.JSON(w, http.StatusOK, out)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Warn("healthz ping", slog.Any("error", err))
			out.Status = "degraded"
			out.Database = "unreachable"
			httpx.JSON(w, http.StatusServiceUnavailable, out)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}
