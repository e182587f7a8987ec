package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "areamap_queries_total",
		Help: "Dashboard queries by kind",
	}, []string{"kind"})
	RadiusDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "areamap_radius_duration_ms",
		Help:    "Radius query duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	RadiusHits = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "areamap_radius_hits",
		Help:    "Records returned per radius query",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})
	HullsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "areamap_cluster_shapes_total",
		Help: "Manual cluster shapes computed, by outcome (hull or points)",
	}, []string{"outcome"})
	RecordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "areamap_records_loaded",
		Help: "Records in the current snapshot",
	})
	ReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "areamap_reloads_total",
		Help: "Record file reloads by status",
	}, []string{"status"})
	NotesAppendedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "areamap_notes_appended_total",
		Help: "Visit notes written",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(RadiusDurationMs)
	prometheus.MustRegister(RadiusHits)
	prometheus.MustRegister(HullsTotal)
	prometheus.MustRegister(RecordsLoaded)
	prometheus.MustRegister(ReloadsTotal)
	prometheus.MustRegister(NotesAppendedTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
