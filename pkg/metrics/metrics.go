// Package metrics counts translations and probe outcomes on a private
// Prometheus registry. Short-lived runs dump it in node-exporter textfile
// format instead of serving it.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/macprobe"
)

// Result label values
const (
	ResultOK          = "ok"
	ResultParseError  = "parse_error"
	ResultBadClass    = "bad_class"
	ResultUnwired     = "unwired"
	ResultNotFound    = "not_found"
	ResultUnsupported = "unsupported"
	ResultError       = "error"
)

// Metrics holds the hsnaddr counters. A nil *Metrics discards observations.
type Metrics struct {
	registry     *prometheus.Registry
	translations *prometheus.CounterVec
	probes       *prometheus.CounterVec
}

// New creates the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hsnaddr_translations_total",
			Help: "MAC to logical address translations by switch class and result.",
		}, []string{"class", "result"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hsnaddr_probe_results_total",
			Help: "MAC discovery probe attempts by probe and result.",
		}, []string{"probe", "result"}),
	}
	m.registry.MustRegister(m.translations, m.probes)
	return m
}

// Registry exposes the underlying registry as a Gatherer.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTranslation counts one translation attempt.
func (m *Metrics) ObserveTranslation(class logaddr.SwitchClass, err error) {
	if m == nil {
		return
	}
	m.translations.WithLabelValues(class.String(), translationResult(err)).Inc()
}

// ObserveProbe counts one probe attempt. Its signature matches
// macprobe.Chain.Observe.
func (m *Metrics) ObserveProbe(probe string, err error) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(probe, probeResult(err)).Inc()
}

// WriteTextfile writes every counter to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func translationResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, logaddr.ErrParse):
		return ResultParseError
	case errors.Is(err, logaddr.ErrUnrecognizedClass):
		return ResultBadClass
	case errors.Is(err, logaddr.ErrUnwiredPort):
		return ResultUnwired
	default:
		return ResultError
	}
}

func probeResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, macprobe.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, macprobe.ErrUnsupported):
		return ResultUnsupported
	default:
		return ResultError
	}
}
