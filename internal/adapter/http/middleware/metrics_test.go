package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iho/gopayout/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		pattern    string
		statusCode int
	}{
		{
			name:       "uses route pattern for IDs",
			method:     http.MethodGet,
			path:       "/api/v1/disbursements/01HABC",
			pattern:    "/api/v1/disbursements/{id}",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "static route",
			method:     http.MethodPost,
			path:       "/api/v1/disbursements/runs",
			pattern:    "/api/v1/disbursements/runs",
			statusCode: http.StatusCreated,
		},
		{
			name:       "unmatched route",
			method:     http.MethodGet,
			path:       "/nope",
			pattern:    "unmatched",
			statusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			}

			r := chi.NewRouter()
			r.Use(NewMetricsMiddleware(m).Wrap)
			r.Get("/api/v1/disbursements/{id}", handler)
			r.Post("/api/v1/disbursements/runs", handler)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, tc.statusCode, rr.Code)
			assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInFlight))

			counter := m.HTTPRequests.WithLabelValues(tc.method, tc.pattern, strconv.Itoa(tc.statusCode))
			assert.Equal(t, 1.0, testutil.ToFloat64(counter))
		})
	}
}
