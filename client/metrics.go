package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSet carries the instrumentation of one client. The collectors
// are always constructed so that the hot paths never need a nil check;
// they are only registered when the caller provides a Registerer.
type metricsSet struct {
	linesReceived    prometheus.Counter
	commandsSent     prometheus.Counter
	repliesMatched   prometheus.Counter
	repliesUnmatched prometheus.Counter
	framesReceived   *prometheus.CounterVec
	framesDropped    prometheus.Counter
	framesUnroutable prometheus.Counter
	sequenceGaps     prometheus.Counter
	keepaliveRTT     prometheus.Gauge
}

func newMetricsSet(registerer prometheus.Registerer) *metricsSet {
	m := &metricsSet{
		linesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "lines_received_total",
			Help:      "Lines received on the command channel.",
		}),
		commandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "commands_sent_total",
			Help:      "Commands sent on the command channel.",
		}),
		repliesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "replies_matched_total",
			Help:      "Replies delivered to a registered handler.",
		}),
		repliesUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "replies_unmatched_total",
			Help:      "Replies without a registered handler.",
		}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "frames_received_total",
			Help:      "Frames received on the streaming channel.",
		}, []string{"class"}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped because a queue was full.",
		}),
		framesUnroutable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "frames_unroutable_total",
			Help:      "Frames for an unknown stream or an unhandled class.",
		}),
		sequenceGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flexsdr",
			Name:      "sequence_gaps_total",
			Help:      "Detected gaps in the per-stream packet counters.",
		}),
		keepaliveRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flexsdr",
			Name:      "keepalive_rtt_seconds",
			Help:      "Round trip time of the most recent keepalive ping.",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.linesReceived,
			m.commandsSent,
			m.repliesMatched,
			m.repliesUnmatched,
			m.framesReceived,
			m.framesDropped,
			m.framesUnroutable,
			m.sequenceGaps,
			m.keepaliveRTT,
		)
	}
	return m
}
