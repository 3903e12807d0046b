package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angeloszaimis/api-gateway/internal/health"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
)

// setupRouter mounts the administrative endpoints and sends everything else
// into the dispatch pipeline. Admin endpoints bypass rate limiting, token
// verification, and routing entirely.
func setupRouter(dispatch http.Handler, aggregator *health.Aggregator, collector *metrics.Collector) *chi.Mux {
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API Gateway is healthy"))
	})
	mux.Get("/status", aggregator.Handler())
	mux.Get("/metrics", collector.Handler())

	mux.NotFound(dispatch.ServeHTTP)

	return mux
}
