package votes

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cast              *prometheus.CounterVec
	cancelled         *prometheus.CounterVec
	rateLimitTriggers *prometheus.CounterVec
	sideEffectsFailed *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forumvote",
			Name:      "votes_cast_total",
			Help:      "Votes inserted into the ledger.",
		}, []string{"collection", "vote_type"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forumvote",
			Name:      "votes_cancelled_total",
			Help:      "Votes cancelled and mirrored by an unvote record.",
		}, []string{"collection"}),
		rateLimitTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forumvote",
			Name:      "rate_limit_triggers_total",
			Help:      "Rate limit consequences applied to vote attempts.",
		}, []string{"consequence"}),
		sideEffectsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forumvote",
			Name:      "side_effects_failed_total",
			Help:      "Fire-and-forget vote side effects that returned an error.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.cast, m.cancelled, m.rateLimitTriggers, m.sideEffectsFailed)
	}
	return m
}

func (m *Metrics) voteCast(collection, voteType string) {
	if m != nil {
		m.cast.WithLabelValues(collection, voteType).Inc()
	}
}

func (m *Metrics) voteCancelled(collection string) {
	if m != nil {
		m.cancelled.WithLabelValues(collection).Inc()
	}
}

func (m *Metrics) rateLimited(c Consequence) {
	if m != nil {
		m.rateLimitTriggers.WithLabelValues(string(c)).Inc()
	}
}

func (m *Metrics) sideEffectFailed(kind string) {
	if m != nil {
		m.sideEffectsFailed.WithLabelValues(kind).Inc()
	}
}
