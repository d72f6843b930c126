package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/catalog"
)

const namespace = "menace"

// Metrics exposes the size of the last built catalog. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	reachableBoards   prometheus.Gauge
	decisionPositions *prometheus.GaugeVec
	canonicalClasses  *prometheus.GaugeVec
	buildDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),

		reachableBoards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reachable_boards",
			Help:      "Number of boards reached by the game tree traversal.",
		}),
		decisionPositions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "decision_positions",
			Help:      "Number of decision positions per depth.",
		}, []string{"depth"}),
		canonicalClasses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "canonical_classes",
			Help:      "Number of canonical classes per depth.",
		}, []string{"depth"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_build_duration_seconds",
			Help:      "Time spent obtaining the catalog.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"source"}),
	}

	that.registry.MustRegister(
		that.reachableBoards,
		that.decisionPositions,
		that.canonicalClasses,
		that.buildDuration,
	)

	return that
}

// ObserveCatalog - records the catalog sizes and how long it took to obtain it.
// source is "engine" for a fresh build and "repository" for a stored one.
func (that *Metrics) ObserveCatalog(result *catalog.Catalog, source string, elapsed time.Duration) {
	that.reachableBoards.Set(float64(result.Reachable))

	for _, stats := range catalog.PerDepthStats(result.Classes, result.Positions) {
		depth := strconv.Itoa(stats.Depth)

		that.decisionPositions.WithLabelValues(depth).Set(float64(stats.Positions))
		that.canonicalClasses.WithLabelValues(depth).Set(float64(stats.Classes))
	}

	that.buildDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (that *Metrics) Registry() *prometheus.Registry {
	return that.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{})
}
