package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/discovery/response"
	healthuc "github.com/kailas-cloud/discover/internal/usecase/health"
)

type discoverCall struct {
	body request.Body
	opts request.Options
}

type mockDiscoverer struct {
	calls []discoverCall
	fn    func(ctx context.Context, body request.Body, opts request.Options) (response.Response, error)
}

func (m *mockDiscoverer) Discover(ctx context.Context, body request.Body, opts request.Options) (response.Response, error) {
	m.calls = append(m.calls, discoverCall{body: body, opts: opts})
	if m.fn != nil {
		return m.fn(ctx, body, opts)
	}
	return response.Response{Catalogs: []response.Catalog{}}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(d Discoverer, h HealthChecker) *Server {
	s := NewServer(d, h, "test-network", zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func serve(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	NewRouter(s, zap.NewNop()).ServeHTTP(rr, req)
	return rr
}
