package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/david-caro/inspire-matcher/internal/domain/match"
)

// CompileRecorder exports compilation outcomes and latency.
type CompileRecorder struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCompileRecorder creates the compile collectors and registers them on reg.
// Collectors already registered on reg are reused.
func NewCompileRecorder(reg prometheus.Registerer) (*CompileRecorder, error) {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "compile_total",
			Help:      "Total number of compiled match specifications by outcome",
		},
		[]string{"type", "outcome"}, // outcome: query / no_signal / absent / error
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "compile_duration_seconds",
			Help:      "Match specification compile duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"type"},
	)

	var err error
	if total, err = register(reg, total); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &CompileRecorder{total: total, duration: duration}, nil
}

// ObserveCompile implements matching.Recorder.
func (r *CompileRecorder) ObserveCompile(matchType match.Type, outcome string, elapsed time.Duration) {
	r.total.WithLabelValues(string(matchType), outcome).Inc()
	r.duration.WithLabelValues(string(matchType)).Observe(elapsed.Seconds())
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}
