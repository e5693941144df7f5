// Package monitoring exposes Prometheus metrics for enclave resolution
package monitoring

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "enclave_"

const (
	MetricLabelSource = "source"
	MetricLabelResult = "result"
	MetricLabelMode   = "mode"
)

const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultOK       = "ok"
	ResultError    = "error"
)

var (
	resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%sresolutions_total", prefix),
			Help: "Total number of secure root lookups by candidate source and result",
		},
		[]string{MetricLabelSource, MetricLabelResult},
	)

	optionsBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%ssecurity_options_total", prefix),
			Help: "Total number of security option builds by enforcement mode and result",
		},
		[]string{MetricLabelMode, MetricLabelResult},
	)
)

// RecordResolution records one secure root lookup
func RecordResolution(source string, found bool) {
	result := ResultNotFound
	if found {
		result = ResultFound
	}
	resolutions.WithLabelValues(source, result).Inc()
}

// RecordOptions records one security options build
func RecordOptions(mode string, ok bool) {
	result := ResultError
	if ok {
		result = ResultOK
	}
	optionsBuilds.WithLabelValues(mode, result).Inc()
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, for pickup by a node exporter textfile collector
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
