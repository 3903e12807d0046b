package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the aggregate status report as JSON. Probes run on every
// call; nothing is cached.
func (a *Aggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := a.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
