package metrics

import "github.com/prometheus/client_golang/prometheus"

// Monitor holds the prometheus registry and all metrics of the offer
// pipeline.
type Monitor struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	CatalogErrors   *prometheus.CounterVec
	OffersDropped   *prometheus.CounterVec
	Cache           *prometheus.CounterVec
	Offers          prometheus.Gauge
	RefreshDuration prometheus.Histogram
}

func New() *Monitor {
	reg := prometheus.NewRegistry()
	m := &Monitor{
		Registry: reg,

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilbud_http_requests_total",
			Help: "Upstream catalog API requests by host and status code",
		}, []string{"host", "code"}),

		CatalogErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilbud_fetch_errors_total",
			Help: "Failed catalog or hotspot fetches by dealer and stage",
		}, []string{"dealer", "stage"}),

		OffersDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilbud_offers_dropped_total",
			Help: "Hotspots that did not normalize into an offer, by dealer",
		}, []string{"dealer"}),

		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilbud_cache_total",
			Help: "Offer cache decisions (hit, miss, stale, changed, write_error, write_skipped, written)",
		}, []string{"result"}),

		Offers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tilbud_offers",
			Help: "Offers returned by the last retrieval",
		}),

		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tilbud_refresh_duration_seconds",
			Help:    "Wall time of a remote refresh",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.CatalogErrors,
		m.OffersDropped,
		m.Cache,
		m.Offers,
		m.RefreshDuration,
	)

	return m
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Monitor) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
