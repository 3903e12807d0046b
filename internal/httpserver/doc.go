// Package httpserver provides a validated http.Server wrapper with
// graceful shutdown support.
package httpserver
