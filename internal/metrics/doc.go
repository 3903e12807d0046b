// Package metrics provides real-time metrics collection for the gateway.
//
// It uses a channel-based event pipeline to asynchronously collect metrics about:
//   - Request counts and status code distribution per route
//   - Response times with percentile calculations (P50, P95, P99)
//   - Rate-limited request counts
//   - Proxy failures per route
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the request path. Events are sent via a buffered channel with
// non-blocking semantics to prevent performance degradation under load.
package metrics
