package chi

import (
	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/metrics"
)

// Route paths.
const (
	PathDiscover      = "/beckn/v1/discover"
	PathBrowserSearch = "/beckn/v1/discover/browser-search"
	PathHealth        = "/health"
	PathMetrics       = "/metrics"
)

// NewRouter mounts s behind the standard middleware stack.
func NewRouter(s *Server, logger *zap.Logger) gochi.Router {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(logger))
	r.Use(metrics.Middleware())

	r.Post(PathDiscover, s.Discover)
	r.Get(PathBrowserSearch, s.BrowserSearch)
	r.Get(PathHealth, s.HealthCheck)
	r.Get(PathMetrics, s.Metrics)
	return r
}
