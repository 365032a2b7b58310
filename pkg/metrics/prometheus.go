package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPath = "/debug/prometheus"

// Register mounts the Prometheus scrape endpoint on the router.
func Register(r *mux.Router, path string) {
	if path == "" {
		path = defaultPath
	}
	r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
}
