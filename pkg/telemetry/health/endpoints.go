package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo is the payload served on /version.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// serveProbe writes a JSON probe response. HEAD gets the status code
// without a body, anything besides GET/HEAD is rejected.
func serveProbe(w http.ResponseWriter, r *http.Request, code int, body any) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if r.Method == http.MethodGet {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// LivenessHandler serves the liveness probe. It only proves the process
// is running and never touches the stores, so a wedged database cannot
// get the process restarted in a loop.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveProbe(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler serves the readiness probe by running every
// registered store check. Any degraded or unhealthy store returns 503:
// an engine that cannot reach its stores would fail every evaluation
// closed, so it should not receive traffic.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := c.CheckReadiness(r.Context())

		code := http.StatusOK
		if status.Status == StatusDegraded || status.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		serveProbe(w, r, code, status)
	}
}

// VersionHandler serves build identity on /version. The Go version is
// filled in here so callers only supply what the linker injected.
func VersionHandler(info VersionInfo) http.HandlerFunc {
	info.GoVersion = runtime.Version()

	return func(w http.ResponseWriter, r *http.Request) {
		serveProbe(w, r, http.StatusOK, info)
	}
}
