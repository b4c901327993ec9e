package supervisor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	spawnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vllmsup",
			Subsystem: "supervisor",
			Name:      "spawns_total",
			Help:      "Total number of server spawn attempts",
		},
		[]string{"outcome"},
	)

	healthPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vllmsup",
			Subsystem: "supervisor",
			Name:      "health_polls_total",
			Help:      "Health endpoint probes by result",
		},
		[]string{"result"},
	)

	readySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vllmsup",
			Subsystem: "supervisor",
			Name:      "ready_seconds",
			Help:      "Time from WaitForHealth entry until a 200 was observed",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
	)

	terminationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vllmsup",
			Subsystem: "supervisor",
			Name:      "terminations_total",
			Help:      "Terminate calls by how the child was stopped",
		},
		[]string{"mode"},
	)

	runningGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vllmsup",
			Subsystem: "supervisor",
			Name:      "running",
			Help:      "1 while a supervised server process is tracked",
		},
	)
)

func init() {
	prometheus.MustRegister(spawnsTotal, healthPollsTotal, readySeconds, terminationsTotal, runningGauge)
}

// Label values.
const (
	pollOK       = "ok"
	pollNotReady = "not_ready"
	pollError    = "error"

	stopNone     = "none"
	stopGraceful = "graceful"
	stopForced   = "forced"
)
