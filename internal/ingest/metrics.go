package ingest

import (
	"github.com/shapedtime/fmp4segmenter/internal/fmp4"
	"github.com/shapedtime/fmp4segmenter/internal/metrics"
	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

// WireMetrics subscribes m's counters and histogram to session's
// segment/error events. Call once after constructing both the session
// and the metrics registry.
func WireMetrics(session *publish.Session, m *metrics.Metrics) {
	session.Subscribe(publish.EventSegment, func(publish.Event) {
		m.SegmentsParsedTotal.Inc()
		m.SegmentDuration.Observe(session.Duration())
	})
	session.Subscribe(publish.EventError, func(ev publish.Event) {
		m.ParseErrorsTotal.WithLabelValues(errorKind(ev.Err)).Inc()
	})
}

func errorKind(err error) string {
	perr, ok := err.(*fmp4.ParseError)
	if !ok {
		return "unknown"
	}
	return perr.Kind.String()
}
