package cms

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eringen/pressfront/content"
)

// Fetch outcomes recorded by Metrics.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeQueryError  = "query_error"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// Metrics holds the CMS collectors.
type Metrics struct {
	fetches   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cacheHits prometheus.Counter
}

// NewMetrics registers the CMS collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pressfront_cms_fetch_total",
			Help: "CMS queries by outcome.",
		}, []string{"query", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pressfront_cms_fetch_duration_seconds",
			Help:    "Time spent running CMS queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "pressfront_cms_cache_hits_total",
			Help: "CMS queries served from cache.",
		}),
	}
}

func (m *Metrics) cacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

// Instrument wraps f so every call is counted and timed.
func Instrument(f content.Fetcher, m *Metrics) content.Fetcher {
	if m == nil {
		return f
	}
	return &instrumented{next: f, m: m}
}

type instrumented struct {
	next content.Fetcher
	m    *Metrics
}

func (i *instrumented) Fetch(ctx context.Context, q content.Query, params content.Params, opts content.FetchOptions) (json.RawMessage, error) {
	start := time.Now()
	raw, err := i.next.Fetch(ctx, q, params, opts)
	i.m.duration.WithLabelValues(q.Name).Observe(time.Since(start).Seconds())
	i.m.fetches.WithLabelValues(q.Name, Outcome(err)).Inc()
	return raw, err
}

// Outcome classifies a fetch error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, content.ErrStoreQuery):
		return OutcomeQueryError
	case errors.Is(err, content.ErrStoreUnavailable):
		return OutcomeUnavailable
	}
	return OutcomeError
}
