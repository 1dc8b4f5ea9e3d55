package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dataset pipeline and the predictor.
type Metrics struct {
	// Pipeline metrics.
	SessionsLoaded *prometheus.CounterVec // labels: session={qualifying,race}
	SessionsFailed *prometheus.CounterVec // labels: session={qualifying,race}
	EventsSkipped  *prometheus.CounterVec // labels: reason={format,incomplete}
	RowsProduced   prometheus.Counter
	SeasonsBuilt   prometheus.Counter
	CorpusRows     prometheus.Gauge
	RunDuration    prometheus.Histogram

	// Upstream and cache metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, status
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	CacheLookups     *prometheus.CounterVec   // labels: tier={memory,disk}, result={hit,miss}

	// Predictor metrics.
	Predictions      *prometheus.CounterVec // labels: outcome={success,error}
	PredictorEnabled prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SessionsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "sessions_loaded_total",
			Help:      "Sessions loaded from the timing source by kind.",
		}, []string{"session"}),
		SessionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "sessions_failed_total",
			Help:      "Sessions that failed to load and were skipped, by kind.",
		}, []string{"session"}),
		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "events_skipped_total",
			Help:      "Schedule events left out of the season table, by reason.",
		}, []string{"reason"}),
		RowsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "season_rows_total",
			Help:      "Joined driver rows added to season tables.",
		}),
		SeasonsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "seasons_built_total",
			Help:      "Seasons that produced at least one row.",
		}),
		CorpusRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1_etl",
			Name:      "corpus_rows",
			Help:      "Rows in the last corpus written.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "f1_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete corpus build.",
			Buckets:   []float64{1, 10, 30, 60, 300, 600, 1800, 3600},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "upstream_requests_total",
			Help:      "Timing API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "f1_etl",
			Name:      "upstream_request_duration_seconds",
			Help:      "Timing API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "cache_lookups_total",
			Help:      "Fetch cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1_etl",
			Name:      "predictions_total",
			Help:      "Predictions served by outcome.",
		}, []string{"outcome"}),
		PredictorEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1_etl",
			Name:      "predictor_enabled",
			Help:      "1 when the predictor artifacts are loaded.",
		}),
	}

	prometheus.MustRegister(m.collectors()...)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SessionsLoaded:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "sessions_loaded_total"}, []string{"session"}),
		SessionsFailed:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "sessions_failed_total"}, []string{"session"}),
		EventsSkipped:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "events_skipped_total"}, []string{"reason"}),
		RowsProduced:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "f1_etl", Name: "season_rows_total"}),
		SeasonsBuilt:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "f1_etl", Name: "seasons_built_total"}),
		CorpusRows:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "f1_etl", Name: "corpus_rows"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "f1_etl", Name: "run_duration_seconds"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "upstream_requests_total"}, []string{"endpoint", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "f1_etl", Name: "upstream_request_duration_seconds"}, []string{"endpoint"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "cache_lookups_total"}, []string{"tier", "result"}),
		Predictions:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "f1_etl", Name: "predictions_total"}, []string{"outcome"}),
		PredictorEnabled: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "f1_etl", Name: "predictor_enabled"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SessionsLoaded,
		m.SessionsFailed,
		m.EventsSkipped,
		m.RowsProduced,
		m.SeasonsBuilt,
		m.CorpusRows,
		m.RunDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.Predictions,
		m.PredictorEnabled,
	}
}
