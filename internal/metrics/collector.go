package metrics

import "github.com/prometheus/client_golang/prometheus"

// RingStatsSource is implemented by publish.Session. It is declared here,
// rather than imported, to keep this package free of a dependency on the
// domain package it instruments.
type RingStatsSource interface {
	RingStats() (hlsLen, hlsCap, bufferLen, bufferCap int)
}

// SessionCollector implements prometheus.Collector for ring occupancy.
// It polls Session.RingStats() lazily on each Prometheus scrape rather
// than maintaining duplicate state.
type SessionCollector struct {
	source RingStatsSource

	hlsLen    *prometheus.Desc
	hlsCap    *prometheus.Desc
	bufferLen *prometheus.Desc
	bufferCap *prometheus.Desc
}

// NewSessionCollector creates a collector that scrapes ring stats on demand.
func NewSessionCollector(source RingStatsSource) *SessionCollector {
	return &SessionCollector{
		source: source,
		hlsLen: prometheus.NewDesc(
			"fmp4segmenter_hls_ring_segments",
			"Number of segments currently held in the HLS ring.",
			nil, nil,
		),
		hlsCap: prometheus.NewDesc(
			"fmp4segmenter_hls_ring_capacity",
			"Configured capacity of the HLS ring.",
			nil, nil,
		),
		bufferLen: prometheus.NewDesc(
			"fmp4segmenter_buffer_ring_segments",
			"Number of segments currently held in the buffer ring.",
			nil, nil,
		),
		bufferCap: prometheus.NewDesc(
			"fmp4segmenter_buffer_ring_capacity",
			"Configured capacity of the buffer ring.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hlsLen
	ch <- c.hlsCap
	ch <- c.bufferLen
	ch <- c.bufferCap
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	hlsLen, hlsCap, bufferLen, bufferCap := c.source.RingStats()
	ch <- prometheus.MustNewConstMetric(c.hlsLen, prometheus.GaugeValue, float64(hlsLen))
	ch <- prometheus.MustNewConstMetric(c.hlsCap, prometheus.GaugeValue, float64(hlsCap))
	ch <- prometheus.MustNewConstMetric(c.bufferLen, prometheus.GaugeValue, float64(bufferLen))
	ch <- prometheus.MustNewConstMetric(c.bufferCap, prometheus.GaugeValue, float64(bufferCap))
}
