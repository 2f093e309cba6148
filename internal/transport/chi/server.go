package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domdisc "github.com/kailas-cloud/discover/internal/domain/discovery"
	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/discovery/response"
	"github.com/kailas-cloud/discover/internal/logger"
	healthuc "github.com/kailas-cloud/discover/internal/usecase/health"
)

// maxBodyBytes bounds a discover request body.
const maxBodyBytes = 1 << 20

// Discoverer runs discover requests.
type Discoverer interface {
	Discover(ctx context.Context, body request.Body, opts request.Options) (response.Response, error)
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the discover API.
type Server struct {
	discovery     Discoverer
	health        HealthChecker
	networkID     string
	now           func() time.Time
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. networkID is stamped on contexts
// synthesised for browser searches.
func NewServer(discovery Discoverer, health HealthChecker, networkID string, logger *zap.Logger) *Server {
	s := &Server{
		discovery: discovery,
		health:    health,
		networkID: networkID,
		now:       time.Now,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		discoveryErrorHandler,
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, "The request timed out"),
	}
	return s
}

// Discover handles POST /beckn/v1/discover.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, domdisc.InvalidBody())
			return
		}
		s.handleDomainError(r.Context(), w, err)
		return
	}

	var body request.Body
	if err := json.Unmarshal(data, &body); err != nil {
		writeError(w, http.StatusBadRequest, domdisc.InvalidBody())
		return
	}

	s.run(w, r, body, request.Options{})
}

// BrowserSearch handles GET /beckn/v1/discover/browser-search. The context
// is synthesised; the caller must name at least one schema context and
// supply q or filters.
func (s *Server) BrowserSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ctxBlock := map[string]any{
		request.FieldTimestamp:     s.now().UTC().Format(response.TimestampLayout),
		request.FieldMessageID:     uuid.NewString(),
		request.FieldTraceID:       uuid.NewString(),
		request.FieldNetworkID:     s.networkID,
		request.FieldSchemaContext: nonNil(q["schema_context"]),
	}
	pagination := map[string]any{}
	for _, key := range []string{"page", "limit"} {
		if v := q.Get(key); v != "" {
			pagination[key] = queryNumber(v)
		}
	}

	body := request.Body{
		Context:    mustMarshal(ctxBlock),
		TextSearch: mustMarshal(q.Get("q")),
		Filters:    mustMarshal(q.Get("filters")),
		Pagination: mustMarshal(pagination),
	}
	s.run(w, r, body, request.Options{RequireSchemaContext: true, RequireSearchParameters: true})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, body request.Body, opts request.Options) {
	resp, err := s.discovery.Discover(r.Context(), body, opts)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
		Items:  report.Items,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.logger
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.ErrorLevel) {
		log = l
	}
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Info("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, domdisc.Internal())
}

// queryNumber keeps integral query values numeric so validation sees the
// same JSON types a POST body would carry; anything else stays a string.
func queryNumber(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
