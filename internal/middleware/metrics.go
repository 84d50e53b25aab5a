package middleware

import (
	"net/http"
	"strconv"

	"product-catalog/internal/metrics"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics counts every request in http_requests_total by method, chi route
// pattern and status. The route pattern keeps the series set bounded.
func RequestMetrics(registry *metrics.Registry) func(http.Handler) http.Handler {
	_ = registry.RegisterCounter(metrics.HTTPRequestsTotal,
		"Total number of HTTP requests by method, route and status",
		"method", "route", "status",
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			registry.Inc(metrics.HTTPRequestsTotal, prometheus.Labels{
				"method": r.Method,
				"route":  routeOf(r),
				"status": strconv.Itoa(statusOf(ww)),
			})
		})
	}
}
