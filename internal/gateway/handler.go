package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/api-gateway/internal/auth"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/middleware"
	"github.com/angeloszaimis/api-gateway/internal/router"
)

type rewrittenPathKey struct{}

// Handler dispatches proxied requests: it resolves the route for a path,
// runs the route's admission chain (token verification where configured),
// and forwards to the route's upstream. Administrative endpoints are not
// served here; they live on the mux in front of this handler.
type Handler struct {
	logger    *slog.Logger
	table     *router.Table
	chains    map[string]http.Handler
	collector *metrics.Collector
}

// New builds the dispatch handler. Each route's handler chain is composed
// once at startup: forwarding wrapped by token verification when the route
// requires it.
func New(logger *slog.Logger, table *router.Table, verifier *auth.Verifier, collector *metrics.Collector) *Handler {
	h := &Handler{
		logger:    logger,
		table:     table,
		chains:    make(map[string]http.Handler, len(table.Routes())),
		collector: collector,
	}

	for _, route := range table.Routes() {
		var chain http.Handler = forwardHandler(route)
		if route.RequiresAuth {
			chain = middleware.Auth(verifier, logger)(chain)
		}
		h.chains[route.Prefix] = chain
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, rewritten, ok := h.table.Resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	h.logger.Debug("Resolved route",
		slog.String("route", route.Name),
		slog.String("path", r.URL.Path),
		slog.String("rewritten", rewritten))

	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	start := time.Now()

	ctx := context.WithValue(r.Context(), rewrittenPathKey{}, rewritten)
	h.chains[route.Prefix].ServeHTTP(ww, r.WithContext(ctx))

	h.emit(route.Name, time.Since(start), ww.Status())
}

func (h *Handler) emit(route string, duration time.Duration, status int) {
	if h.collector == nil {
		return
	}

	h.collector.Emit(metrics.Event{
		Type:       metrics.EventRequestCompleted,
		Timestamp:  time.Now(),
		Route:      route,
		Duration:   duration,
		StatusCode: status,
	})
	if status == http.StatusGatewayTimeout {
		h.collector.Emit(metrics.Event{
			Type:      metrics.EventProxyError,
			Timestamp: time.Now(),
			Route:     route,
		})
	}
}

func forwardHandler(route router.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rewritten, _ := r.Context().Value(rewrittenPathKey{}).(string)
		if rewritten == "" {
			rewritten = "/"
		}
		route.Upstream.Forward(w, r, rewritten)
	})
}
