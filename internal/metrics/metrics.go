// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curve_engine_operations_total",
			Help: "Total number of engine operations by type and status",
		},
		[]string{"operation", "status"},
	)
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curve_engine_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: prometheus.LinearBuckets(0, 0.005, 10),
		},
		[]string{"operation"},
	)
	reserveMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curve_engine_reserve_moved_total",
			Help: "Reserve base units moved through curves by direction",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(operationCounter)
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(reserveMoved)
}

// Measure runs f and records its duration and outcome under the given
// operation label.
func Measure(operation string, f func() error) error {
	start := time.Now()
	err := f()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		operationCounter.WithLabelValues(operation, "failed").Inc()
	} else {
		operationCounter.WithLabelValues(operation, "success").Inc()
	}
	return err
}

// ReserveIn records reserve entering a curve (buys, swap deposits).
func ReserveIn(amount uint64) {
	reserveMoved.WithLabelValues("in").Add(float64(amount))
}

// ReserveOut records reserve leaving a curve (sell payouts).
func ReserveOut(amount uint64) {
	reserveMoved.WithLabelValues("out").Add(float64(amount))
}
