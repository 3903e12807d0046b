// Package gateway implements the request dispatch handler: route resolution,
// per-route token verification, and forwarding to the matched upstream.
package gateway
