// Package metrics records per-run inference statistics and exports them in
// the Prometheus textfile format.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "status" label.
const (
	StatusOK          = "ok"
	StatusNoContent   = "no_content"
	StatusInputAccess = "input_access"
	StatusError       = "error"
)

// Recorder collects inference metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	pagesTotal         prometheus.Counter
	emptyPagesTotal    prometheus.Counter
	fragmentsTotal     *prometheus.CounterVec
	blocksTotal        prometheus.Counter
	headerFootersTotal prometheus.Counter
	stageDuration      *prometheus.HistogramVec
	inferenceDuration  prometheus.Histogram
	lastSuccess        prometheus.Gauge
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocrop_runs_total",
				Help: "Total number of inference runs",
			},
			[]string{"status"},
		),
		pagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocrop_pages_total",
			Help: "Total number of pages read",
		}),
		emptyPagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocrop_pages_without_content_total",
			Help: "Total number of pages that produced no content box",
		}),
		fragmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocrop_fragments_total",
				Help: "Total number of clustered fragments by kind",
			},
			[]string{"kind"},
		),
		blocksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocrop_blocks_total",
			Help: "Total number of text blocks",
		}),
		headerFootersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocrop_header_footer_texts_total",
			Help: "Total number of distinct running header/footer texts",
		}),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pocrop_stage_duration_seconds",
				Help:    "Inference stage duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"stage"},
		),
		inferenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pocrop_inference_duration_seconds",
			Help:    "End-to-end duration of a run in seconds, including reading",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pocrop_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// ObserveResult records a successful run that took elapsed in total.
func (r *Recorder) ObserveResult(res *margins.Result, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(StatusOK).Inc()
	r.pagesTotal.Add(float64(res.PageCount))
	r.emptyPagesTotal.Add(float64(res.PagesWithoutContent()))
	r.fragmentsTotal.WithLabelValues("box").Add(float64(res.Tally.Box))
	r.fragmentsTotal.WithLabelValues("line").Add(float64(res.Tally.Line))
	r.blocksTotal.Add(float64(res.BlockCount))
	r.headerFootersTotal.Add(float64(len(res.HeaderFooters)))
	for _, st := range res.Timings {
		r.stageDuration.WithLabelValues(st.Stage).Observe(st.Duration.Seconds())
	}
	r.inferenceDuration.Observe(elapsed.Seconds())
	r.lastSuccess.SetToCurrentTime()
}

// ObserveFailure records a failed run.
func (r *Recorder) ObserveFailure(err error, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(Status(err)).Inc()
	r.inferenceDuration.Observe(elapsed.Seconds())
}

// Status classifies a run error into a status label.
func Status(err error) string {
	var accessErr *pdf.InputAccessError
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, margins.ErrNoContent):
		return StatusNoContent
	case errors.As(err, &accessErr):
		return StatusInputAccess
	default:
		return StatusError
	}
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
