package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds fMP4 ingest metrics for direct instrumentation in the
// ingest layer.
type Metrics struct {
	SegmentsParsedTotal prometheus.Counter
	ParseErrorsTotal    *prometheus.CounterVec
	BytesIngestedTotal  prometheus.Counter
	SegmentDuration     prometheus.Histogram
}

// New creates and registers ingest metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SegmentsParsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmp4segmenter",
			Subsystem: "ingest",
			Name:      "segments_parsed_total",
			Help:      "Total number of media segments successfully parsed.",
		}),
		ParseErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fmp4segmenter",
			Subsystem: "ingest",
			Name:      "parse_errors_total",
			Help:      "Total number of fatal parse errors, by error kind.",
		}, []string{"kind"}),
		BytesIngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmp4segmenter",
			Subsystem: "ingest",
			Name:      "bytes_ingested_total",
			Help:      "Total bytes written into the segmenter.",
		}),
		SegmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fmp4segmenter",
			Subsystem: "ingest",
			Name:      "segment_duration_seconds",
			Help:      "Wall-clock duration between consecutive published segments.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 2.5, 3, 5, 10},
		}),
	}

	reg.MustRegister(
		m.SegmentsParsedTotal,
		m.ParseErrorsTotal,
		m.BytesIngestedTotal,
		m.SegmentDuration,
	)

	return m
}
