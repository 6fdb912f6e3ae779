package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the scrape endpoint for this collector's registry,
// mounted at the path configured in MetricsConfig. A failing gauge
// function degrades the scrape instead of failing it, so one broken
// store stat cannot blind the whole dashboard.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
