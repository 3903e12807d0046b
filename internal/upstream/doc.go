// Package upstream implements reverse proxy forwarding to backend services.
// Each upstream owns its proxy with a bounded per-request timeout and
// translates connection failures and timeouts into 504 responses.
package upstream
