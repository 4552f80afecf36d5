package middleware

import (
	"net/http"
	"strconv"
	"time"

	"taskFlow/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics считает запросы по шаблону маршрута, а не по сырому пути: id не раздувают метки.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(sw.status)

		metrics.RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		metrics.RequestTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}
