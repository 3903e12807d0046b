package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/upstream"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ServiceStatus is the probe outcome for a single upstream.
type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the aggregate status of the gateway and every upstream it
// fronts. Gateway reflects process liveness only; upstream failures are
// surfaced inside Services.
type Report struct {
	Gateway  string          `json:"gateway"`
	Services []ServiceStatus `json:"services"`
}

// Aggregator probes all configured upstreams on demand. It holds no state
// between calls and is safe for concurrent use.
type Aggregator struct {
	upstreams []*upstream.Upstream
	client    *http.Client
}

func NewAggregator(upstreams []*upstream.Upstream, probeTimeout time.Duration) *Aggregator {
	return &Aggregator{
		upstreams: upstreams,
		client: &http.Client{
			Timeout: probeTimeout,
		},
	}
}

// Check probes every upstream's /health endpoint concurrently and waits for
// all probes before composing the report. Each probe fails independently;
// one unreachable upstream never delays or fails the others. Results keep
// configuration order.
func (a *Aggregator) Check(ctx context.Context) Report {
	statuses := make([]ServiceStatus, len(a.upstreams))

	var wg sync.WaitGroup
	for i, up := range a.upstreams {
		wg.Add(1)
		go func(i int, up *upstream.Upstream) {
			defer wg.Done()
			statuses[i] = a.probe(ctx, up)
		}(i, up)
	}
	wg.Wait()

	return Report{
		Gateway:  StatusHealthy,
		Services: statuses,
	}
}

func (a *Aggregator) probe(ctx context.Context, up *upstream.Upstream) ServiceStatus {
	// JoinPath keeps the target's base path, so http://host/api is probed
	// at /api/health just like requests are forwarded under /api
	healthURL := up.URL().JoinPath("health")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return ServiceStatus{Name: up.Name(), Status: StatusUnhealthy, Error: err.Error()}
	}

	res, err := a.client.Do(req)
	if err != nil {
		return ServiceStatus{Name: up.Name(), Status: StatusUnhealthy, Error: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ServiceStatus{
			Name:   up.Name(),
			Status: StatusUnhealthy,
			Error:  fmt.Sprintf("unexpected status %d", res.StatusCode),
		}
	}

	return ServiceStatus{Name: up.Name(), Status: StatusHealthy}
}
