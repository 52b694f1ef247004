package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	FetchesTotal     *prometheus.CounterVec
	CacheHitsTotal   prometheus.Counter
	DomainsTotal     *prometheus.CounterVec
	CandidatesTotal  prometheus.Counter
	SynthesizedTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mailsieve_fetches_total",
			Help: "Page fetches by outcome",
		}, []string{"outcome"}), // 'ok', 'cached', 'denied', 'skipped', 'failed'
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailsieve_cache_hits_total",
			Help: "Conditional fetches answered from the disk cache",
		}),
		DomainsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mailsieve_domains_total",
			Help: "Domains processed by result",
		}, []string{"result"}), // 'found', 'empty', 'panic'
		CandidatesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailsieve_candidates_total",
			Help: "Person candidates emitted by the extractors",
		}),
		SynthesizedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailsieve_emails_synthesized_total",
			Help: "Addresses synthesized from an inferred local-part pattern",
		}),
	}
}

// The inc helpers tolerate a nil receiver so tests can run without a
// registry.

func (m *Metrics) IncFetch(outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) IncDomain(result string) {
	if m == nil {
		return
	}
	m.DomainsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCandidate() {
	if m == nil {
		return
	}
	m.CandidatesTotal.Inc()
}

func (m *Metrics) IncSynthesized() {
	if m == nil {
		return
	}
	m.SynthesizedTotal.Inc()
}
