package upstream

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

// originalPathKey carries the pre-rewrite request path into the proxy error
// handler so failures are logged against the path the client actually sent.
type originalPathKey struct{}

// Upstream represents a single backend service the gateway forwards to.
// It owns the reverse proxy for its target, including the per-attempt
// timeout and the translation of transport failures into 504 responses.
type Upstream struct {
	name    string
	url     *url.URL
	proxy   *httputil.ReverseProxy
	timeout time.Duration
}

// Name returns the configured service name.
func (u *Upstream) Name() string {
	return u.name
}

// URL returns the upstream base URL.
func (u *Upstream) URL() *url.URL {
	return u.url
}

// Timeout returns the per-request forwarding deadline.
func (u *Upstream) Timeout() time.Duration {
	return u.timeout
}

// Forward proxies the request to the upstream using the given rewritten path.
// Method, headers, and body pass through unchanged; the Host header is
// rewritten to the upstream's origin. The call is bounded by the configured
// timeout; on expiry or connection failure the proxy's error handler answers
// 504 and the original caller never sees a partial response.
func (u *Upstream) Forward(w http.ResponseWriter, r *http.Request, rewrittenPath string) {
	ctx, cancel := context.WithTimeout(r.Context(), u.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, originalPathKey{}, r.URL.Path)

	outreq := r.Clone(ctx)
	outreq.URL.Path = rewrittenPath
	outreq.URL.RawPath = rewriteRawPath(r.URL, rewrittenPath)

	u.proxy.ServeHTTP(w, outreq)
}

// rewriteRawPath strips the matched route prefix from the client's encoded
// path so percent-encoded octets such as %2F survive forwarding. It returns
// "" when the client encoding is already canonical, or when the encoded form
// of the prefix differs from what the client sent; the proxy then re-encodes
// from the decoded path as before.
func rewriteRawPath(in *url.URL, rewrittenPath string) string {
	if in.RawPath == "" {
		return ""
	}
	prefix := strings.TrimSuffix(in.Path, rewrittenPath)
	escapedPrefix := (&url.URL{Path: prefix}).EscapedPath()
	if raw, ok := strings.CutPrefix(in.RawPath, escapedPrefix); ok {
		return raw
	}
	return ""
}

// New creates an Upstream for the given target URL. Transport failures and
// timeouts are logged with the original request path and answered with 504.
func New(name string, target *url.URL, timeout time.Duration, logger *slog.Logger) *Upstream {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// changeOrigin: present ourselves as a client of the target
			pr.Out.Host = target.Host
		},
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
			ResponseHeaderTimeout: timeout,
			ForceAttemptHTTP2:     true,
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			path := r.URL.Path
			if orig, ok := r.Context().Value(originalPathKey{}).(string); ok {
				path = orig
			}
			logger.Error("Error occurred while proxying",
				slog.String("upstream", name),
				slog.String("path", path),
				slog.String("error", err.Error()))
			http.Error(w, "Gateway Timeout", http.StatusGatewayTimeout)
		},
	}

	return &Upstream{
		name:    name,
		url:     target,
		proxy:   proxy,
		timeout: timeout,
	}
}
