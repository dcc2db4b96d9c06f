package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// UIPath is where the signup view is mounted. "/" redirects there.
const UIPath = "/ui"

type RouterOptions struct {
	Logger *zap.Logger

	// Registerer/Gatherer back the /metrics endpoint. Nil disables metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// UI is mounted at UIPath when non-nil. It routes on the path below UIPath.
	UI http.Handler
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(api *Server) http.Handler {
	return NewRouterWithOptions(api, RouterOptions{})
}

// NewRouterWithOptions constructs the API HTTP router.
//
// This is intentionally a thin adapter:
// - query/path decoding happens in the handlers
// - behaviour lives in the activities service
func NewRouterWithOptions(api *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Logger != nil {
		r.Use(RequestLogger(opts.Logger))
	}
	r.Use(middleware.Recoverer)
	if opts.Registerer != nil {
		r.Use(NewMetrics(opts.Registerer).Middleware)
	}

	// Unmatched routes get the same JSON error body as handler errors. Mounted
	// sub-routers inherit these.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "NOT_FOUND", "Not Found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed", nil)
	})

	// Health endpoint is deliberately out of the API surface (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/activities", api.ListActivities)
	r.Post(signupRoute, api.Signup)
	r.Delete(unregisterRoute, api.Unregister)

	if opts.UI != nil {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, UIPath+"/", http.StatusTemporaryRedirect)
		})
		r.Mount(UIPath, opts.UI)
	}
	return r
}
