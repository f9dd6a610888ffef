package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	Registry    *prometheus.Registry
	SyncResults *prometheus.CounterVec
	DroppedRows prometheus.Counter
	RemoteData  prometheus.Gauge
	Requests    *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SyncResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certmap_sync_results_total",
			Help: "Outcomes of the one-shot remote dataset sync",
		}, []string{"result"}),
		DroppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certmap_sync_dropped_rows_total",
			Help: "Remote rows dropped because a joined sensor or country was missing",
		}),
		RemoteData: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certmap_dataset_remote",
			Help: "1 when the active dataset came from the remote store, 0 for bundled data",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certmap_http_requests_total",
			Help: "HTTP requests by route pattern and status class",
		}, []string{"route", "code"}),
	}
	m.Registry.MustRegister(m.SyncResults, m.DroppedRows, m.RemoteData, m.Requests)
	return m
}

// ObserveSync records the outcome of a sync attempt.
func (m *Metrics) ObserveSync(result string, dropped int, remote bool) {
	m.SyncResults.WithLabelValues(result).Inc()
	m.DroppedRows.Add(float64(dropped))
	if remote {
		m.RemoteData.Set(1)
	} else {
		m.RemoteData.Set(0)
	}
}
