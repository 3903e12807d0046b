// Package middleware implements the gateway's admission-control stages as
// composable http.Handler wrappers: security headers, request IDs, access
// logging, rate limiting, token verification, and panic recovery. Stage
// ordering is decided explicitly at startup, not by registration side
// effects.
package middleware
