// Package health implements on-demand health probing of upstream services.
// All upstreams are probed concurrently with independent timeouts and the
// results are composed into a single aggregate report.
package health
