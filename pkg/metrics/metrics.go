// Package metrics records ingestion and consolidation activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives ingestion and consolidation events
type Recorder interface {
	RecordUpload(stream string, rowsIn, rowsOut, skipped int, err error)
	RecordConsolidation(drivers int, elapsed time.Duration)
}

// Nop discards every event
type Nop struct{}

func (Nop) RecordUpload(string, int, int, int, error) {}
func (Nop) RecordConsolidation(int, time.Duration)    {}

// PromRecorder records events in Prometheus metrics.
type PromRecorder struct {
	uploads  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration prometheus.Histogram
	drivers  prometheus.Gauge
}

// NewPromRecorder registers the metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rodizio_uploads_total",
		Help: "Total number of uploaded files by stream and result",
	}, []string{"stream", "result"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rodizio_ingested_rows_total",
		Help: "Rows seen during ingestion by stream and outcome",
	}, []string{"stream", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rodizio_consolidation_duration_seconds",
		Help:    "Time spent reading storage and consolidating a week",
		Buckets: prometheus.DefBuckets,
	})
	drivers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rodizio_consolidated_drivers",
		Help: "Number of drivers in the last consolidated report",
	})

	var err error
	if uploads, err = register(reg, uploads); err != nil {
		return nil, err
	}
	if rows, err = register(reg, rows); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if drivers, err = register(reg, drivers); err != nil {
		return nil, err
	}

	return &PromRecorder{uploads: uploads, rows: rows, duration: duration, drivers: drivers}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordUpload counts an upload and its rows
func (r *PromRecorder) RecordUpload(stream string, rowsIn, rowsOut, skipped int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.uploads.WithLabelValues(stream, result).Inc()
	if err != nil {
		return
	}
	r.rows.WithLabelValues(stream, "read").Add(float64(rowsIn))
	r.rows.WithLabelValues(stream, "stored").Add(float64(rowsOut))
	r.rows.WithLabelValues(stream, "skipped").Add(float64(skipped))
}

// RecordConsolidation observes one consolidation run
func (r *PromRecorder) RecordConsolidation(drivers int, elapsed time.Duration) {
	r.duration.Observe(elapsed.Seconds())
	r.drivers.Set(float64(drivers))
}
