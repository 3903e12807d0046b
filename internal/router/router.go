package router

import (
	"strings"

	"github.com/angeloszaimis/api-gateway/internal/upstream"
)

// Route pairs a path prefix with the upstream it forwards to and whether
// requests must carry a verified token.
type Route struct {
	Name         string
	Prefix       string
	Upstream     *upstream.Upstream
	RequiresAuth bool
}

// Table is the immutable route table built once from validated
// configuration. Lookups require no locking.
type Table struct {
	routes []Route
}

func NewTable(routes []Route) *Table {
	return &Table{routes: routes}
}

// Routes returns the configured routes in configuration order.
func (t *Table) Routes() []Route {
	return t.routes
}

// Resolve matches the request path against configured prefixes on segment
// boundaries and returns the matched route together with the path rewritten
// to the upstream's namespace (prefix stripped). The query string is not part
// of the path and passes through untouched.
func (t *Table) Resolve(path string) (Route, string, bool) {
	for _, route := range t.routes {
		if path == route.Prefix {
			return route, "/", true
		}
		if strings.HasPrefix(path, route.Prefix+"/") {
			return route, strings.TrimPrefix(path, route.Prefix), true
		}
	}
	return Route{}, "", false
}
