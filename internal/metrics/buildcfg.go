// Package metrics provides Prometheus metrics for configuration loads.
// A Recorder owns its registry so a one-shot CLI run can dump it to a
// node-exporter textfile without a scrape endpoint.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load results. Labels are fixed; no file paths or values end up in labels.
const (
	ResultOK         = "ok"
	ResultInvalid    = "invalid"
	ResultUnknownKey = "unknown_key"
	ResultMalformed  = "malformed"
	ResultError      = "error"
)

// Recorder holds the build-configuration metrics.
type Recorder struct {
	registry *prometheus.Registry

	loadTotal    *prometheus.CounterVec
	loadDuration prometheus.Histogram
	info         *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// loadTotal counts configuration loads by result.
		loadTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildcfg_load_total",
			Help: "Total number of build configuration loads, by result.",
		}, []string{"result"}),

		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buildcfg_load_duration_seconds",
			Help:    "Time spent loading and validating the build configuration.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),

		// info is 1 for the effective configuration; other label sets are removed.
		info: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "buildcfg_info",
			Help: "Effective build configuration (value is always 1).",
		}, []string{"target", "sse", "precision", "toolchain"}),
	}
}

// Result classifies a load error into a label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, buildcfg.ErrUnknownConfigField):
		return ResultUnknownKey
	case errors.Is(err, buildcfg.ErrMalformedConfig):
		return ResultMalformed
	case errors.Is(err, buildcfg.ErrInvalidConfigurationValue):
		return ResultInvalid
	default:
		return ResultError
	}
}

// ObserveLoad records one load attempt.
func (r *Recorder) ObserveLoad(err error, d time.Duration) {
	r.loadTotal.WithLabelValues(Result(err)).Inc()
	r.loadDuration.Observe(d.Seconds())
}

// SetConfig publishes cfg as the effective configuration.
func (r *Recorder) SetConfig(cfg buildcfg.BuildConfiguration) {
	r.info.Reset()
	r.info.WithLabelValues(
		string(cfg.BuildTarget),
		strconv.FormatBool(cfg.EnableSSE),
		cfg.Precision(),
		cfg.ToolchainName(),
	).Set(1)
}

// WriteTextfile writes the registry in text exposition format. The file is
// written to a temp name and renamed, as the textfile collector requires.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("mkdir textfile dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
