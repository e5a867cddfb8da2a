package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valueconverting/internal/platform/metrics"
	authmw "valueconverting/pkg/platform/middleware/auth"
	"valueconverting/pkg/requestcontext"
	"valueconverting/pkg/testutil"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*authmw.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("invalid")
	}
	return &authmw.JWTClaims{Subject: "svc", SourceApplicationIDs: []int64{1}}, nil
}

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		p, _ := requestcontext.Principal(r.Context())
		_, _ = w.Write([]byte(p.Subject))
	})
}

func newRouter(health map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validator: staticValidator{},
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Health:    health,
		Resources: []Routes{whoami{}},
	})
}

func TestResourcesRequireAuth(t *testing.T) {
	router := newRouter(nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/whoami"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := testutil.NewRequest(t, http.MethodGet, "/whoami")
	req.Header.Set("Authorization", "Bearer good")
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "svc", rr.Body.String())
}

func TestHealth(t *testing.T) {
	t.Run("all components up", func(t *testing.T) {
		router := newRouter(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("a failing component degrades", func(t *testing.T) {
		router := newRouter(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, map[string]any{"database": "up", "redis": "down"}, (*body)["components"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	require.Contains(t, rr.Body.String(), "value_converting_http_request_duration_seconds")
	assert.Contains(t, rr.Body.String(), `route="/health"`)
}
