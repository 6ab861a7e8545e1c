package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	runDuration   prom.Histogram
	probeDuration *prom.HistogramVec
	linksChecked  *prom.CounterVec
	brokenLinks   *prom.CounterVec
	fileResults   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "linkcheck",
			Name:      "run_duration_seconds",
			Help:      "Total duration of a validation run",
			Buckets:   prom.DefBuckets,
		})
		pr.probeDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "linkcheck",
			Name:      "probe_duration_seconds",
			Help:      "Duration of individual external existence probes",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.linksChecked = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "linkcheck",
			Name:      "links_checked_total",
			Help:      "Links dispatched for validation, by type",
		}, []string{"type"})
		pr.brokenLinks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "linkcheck",
			Name:      "broken_links_total",
			Help:      "Broken links found, by failure reason",
		}, []string{"reason"})
		pr.fileResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "linkcheck",
			Name:      "file_results_total",
			Help:      "Documents processed, by outcome",
		}, []string{"outcome"})
		reg.MustRegister(pr.runDuration, pr.probeDuration, pr.linksChecked, pr.brokenLinks, pr.fileResults)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveProbeDuration(d time.Duration, success bool) {
	if p == nil || p.probeDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.probeDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLinkChecked(linkType string) {
	if p == nil || p.linksChecked == nil {
		return
	}
	p.linksChecked.WithLabelValues(linkType).Inc()
}

func (p *PrometheusRecorder) IncBrokenLink(reason string) {
	if p == nil || p.brokenLinks == nil {
		return
	}
	p.brokenLinks.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncFileResult(outcome string) {
	if p == nil || p.fileResults == nil {
		return
	}
	p.fileResults.WithLabelValues(outcome).Inc()
}

// HTTPHandler returns an http.Handler serving Prometheus metrics for the registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
