// Package router maps inbound request paths to upstream services by prefix.
// Configuration validation guarantees prefixes are unique and non-overlapping,
// so every path resolves to at most one route.
package router
