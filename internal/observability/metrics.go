// Package observability exposes Prometheus metrics for the shear calculations.
package observability

import (
	"strconv"
	"time"

	"github.com/chrissnell/windshear/pkg/shear"
	"github.com/prometheus/client_golang/prometheus"
)

// Calculator label values
const (
	CalculatorTotal       = "total"
	CalculatorNormal      = "normal"
	CalculatorEnhancement = "enhancement"
)

// Metrics holds the Prometheus collectors for the shear calculations.
type Metrics struct {
	Calculations        *prometheus.CounterVec   // labels: calculator
	BucketSelected      *prometheus.CounterVec   // labels: calculator, bucket
	NaNOverrides        *prometheus.CounterVec   // labels: calculator
	CalculationErrors   *prometheus.CounterVec   // labels: calculator
	CalculationDuration *prometheus.HistogramVec // labels: calculator
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "calculations_total",
			Help:      "Completed calculations by calculator.",
		}, []string{"calculator"}),
		BucketSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "bucket_selected_total",
			Help:      "Shear buckets chosen by calculator and bucket value.",
		}, []string{"calculator", "bucket"}),
		NaNOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "nan_overrides_total",
			Help:      "Calculations whose bucket was forced to the lowest value by a NaN gradient.",
		}, []string{"calculator"}),
		CalculationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "windshear",
			Name:      "calculation_errors_total",
			Help:      "Rejected calculations by calculator.",
		}, []string{"calculator"}),
		CalculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "windshear",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of a single calculation.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"calculator"}),
	}

	reg.MustRegister(
		m.Calculations,
		m.BucketSelected,
		m.NaNOverrides,
		m.CalculationErrors,
		m.CalculationDuration,
	)

	return m
}

// ObserveShear records a completed shear calculation
func (m *Metrics) ObserveShear(calculator string, sel shear.Selection, elapsed time.Duration) {
	m.Calculations.WithLabelValues(calculator).Inc()
	m.BucketSelected.WithLabelValues(calculator, strconv.FormatFloat(sel.Bucket, 'g', -1, 64)).Inc()
	if sel.NaNPresent {
		m.NaNOverrides.WithLabelValues(calculator).Inc()
	}
	m.CalculationDuration.WithLabelValues(calculator).Observe(elapsed.Seconds())
}

// ObserveEnhancement records a completed enhancement factor calculation
func (m *Metrics) ObserveEnhancement(elapsed time.Duration) {
	m.Calculations.WithLabelValues(CalculatorEnhancement).Inc()
	m.CalculationDuration.WithLabelValues(CalculatorEnhancement).Observe(elapsed.Seconds())
}

// ObserveError records a rejected calculation
func (m *Metrics) ObserveError(calculator string) {
	m.CalculationErrors.WithLabelValues(calculator).Inc()
}
