// Package metrics exports media pipeline telemetry to Prometheus.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Observer records pipeline and presign activity.
type Observer interface {
	RecordStage(pipeline, stage string, duration time.Duration, err error)
	RecordThumbnail(pipeline string, ok bool)
	RecordPresign(operation string, err error)
}

// PipelineMetrics is the Prometheus-backed Observer.
type PipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
	thumbnails    *prometheus.CounterVec
	presigns      *prometheus.CounterVec
}

// NewPipelineMetrics registers the media collectors on reg.
// Collectors that are already registered are reused.
func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PipelineMetrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "media",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Latency of individual media pipeline stages.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"pipeline", "stage", "outcome"}),
		thumbnails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "media",
			Name:      "thumbnails_total",
			Help:      "Thumbnail generation attempts by outcome.",
		}, []string{"pipeline", "outcome"}),
		presigns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "media",
			Name:      "presign_total",
			Help:      "Presigned URL issuance by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}

	var err error
	if m.stageDuration, err = register(reg, m.stageDuration); err != nil {
		return nil, err
	}
	if m.thumbnails, err = register(reg, m.thumbnails); err != nil {
		return nil, err
	}
	if m.presigns, err = register(reg, m.presigns); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNewPipelineMetrics panics when registration fails.
func MustNewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m, err := NewPipelineMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register media metric: %w", err)
	}
	return c, nil
}

// RecordStage observes how long a pipeline stage took.
func (m *PipelineMetrics) RecordStage(pipeline, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(pipeline, stage, outcome(err == nil)).Observe(duration.Seconds())
}

// RecordThumbnail counts a finished thumbnail attempt.
func (m *PipelineMetrics) RecordThumbnail(pipeline string, ok bool) {
	if m == nil {
		return
	}
	m.thumbnails.WithLabelValues(pipeline, outcome(ok)).Inc()
}

// RecordPresign counts a presigned URL issuance.
func (m *PipelineMetrics) RecordPresign(operation string, err error) {
	if m == nil {
		return
	}
	m.presigns.WithLabelValues(operation, outcome(err == nil)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// Nop is an Observer that records nothing.
type Nop struct{}

func (Nop) RecordStage(string, string, time.Duration, error) {}

func (Nop) RecordThumbnail(string, bool) {}

func (Nop) RecordPresign(string, error) {}

var (
	_ Observer = (*PipelineMetrics)(nil)
	_ Observer = Nop{}
)
