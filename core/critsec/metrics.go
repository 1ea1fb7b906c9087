package critsec

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"example.com/rvlock/base/metrics"
)

type runnerMetrics struct {
	acquisitions prometheus.Counter
	retries      prometheus.Counter
	entries      prometheus.Counter
	counter      prometheus.Gauge
}

func newRunnerMetrics() *runnerMetrics {
	return &runnerMetrics{
		acquisitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.SpinlockAcquisitionsN,
			Help: metrics.SpinlockAcquisitionsH,
		}),
		retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.SpinlockRetriesN,
			Help: metrics.SpinlockRetriesH,
		}),
		entries: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.CritSecEntriesN,
			Help: metrics.CritSecEntriesH,
		}),
		counter: promauto.NewGauge(prometheus.GaugeOpts{
			Name: metrics.CritSecCounterN,
			Help: metrics.CritSecCounterH,
		}),
	}
}

var runnerMtrcs atomic.Pointer[runnerMetrics]

func init() {
	runnerMtrcs.Store(newRunnerMetrics())
}
