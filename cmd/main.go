package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/api-gateway/config"
	"github.com/angeloszaimis/api-gateway/internal/auth"
	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/health"
	"github.com/angeloszaimis/api-gateway/internal/httpserver"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/middleware"
	"github.com/angeloszaimis/api-gateway/internal/ratelimit"
	"github.com/angeloszaimis/api-gateway/internal/router"
	"github.com/angeloszaimis/api-gateway/internal/upstream"
	"github.com/angeloszaimis/api-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	table, upstreams, err := buildRouteTable(cfg, log)
	if err != nil {
		log.Error("Failed to build route table", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	probeTimeout, err := time.ParseDuration(cfg.Health.ProbeTimeout)
	if err != nil {
		log.Error("Invalid probe timeout", slog.Any("err", err))
		os.Exit(1)
	}
	aggregator := health.NewAggregator(upstreams, probeTimeout)

	window, err := time.ParseDuration(cfg.RateLimit.Window)
	if err != nil {
		log.Error("Invalid rate limit window", slog.Any("err", err))
		os.Exit(1)
	}
	limiter := ratelimit.NewLimiter(window, cfg.RateLimit.MaxRequests)

	verifier := auth.NewVerifier(cfg.Auth.Secret)

	dispatch := middleware.RateLimit(limiter, collector)(
		gateway.New(log, table, verifier, collector))

	mux := setupRouter(dispatch, aggregator, collector)

	var handler http.Handler = mux
	handler = middleware.AccessLog(log)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Recovery(log)(handler)

	srv, err := httpserver.New(cfg.Server.Address, handler)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("API Gateway starting",
		slog.String("address", cfg.Server.Address),
		slog.Int("routes", len(table.Routes())))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildRouteTable(cfg *config.Config, log *slog.Logger) (*router.Table, []*upstream.Upstream, error) {
	proxyTimeout, err := time.ParseDuration(cfg.Proxy.Timeout)
	if err != nil {
		return nil, nil, err
	}

	var routes []router.Route
	var upstreams []*upstream.Upstream

	for _, rc := range cfg.Routes {
		target, err := url.Parse(rc.Target)
		if err != nil {
			log.Error("Failed to parse target URL",
				slog.String("route", rc.Name),
				slog.String("target", rc.Target),
				slog.String("error", err.Error()))
			return nil, nil, err
		}

		up := upstream.New(rc.Name, target, proxyTimeout, log)
		upstreams = append(upstreams, up)
		routes = append(routes, router.Route{
			Name:         rc.Name,
			Prefix:       rc.Prefix,
			Upstream:     up,
			RequiresAuth: cfg.AuthEnabled(rc),
		})
	}

	return router.NewTable(routes), upstreams, nil
}
