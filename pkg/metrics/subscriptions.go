package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeApplied  = "applied"
	OutcomeConsumed = "consumed"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// SubscriptionMetrics counts subscription and referral outcomes.
type SubscriptionMetrics struct {
	upserted       *prometheus.CounterVec
	invitesCreated prometheus.Counter
	redeemed       prometheus.Counter
	rejections     *prometheus.CounterVec
	inviterBonus   *prometheus.CounterVec
}

// NewSubscriptionMetrics registers the subscription counters on reg. A nil
// registerer yields a no-op recorder.
func NewSubscriptionMetrics(reg prometheus.Registerer) *SubscriptionMetrics {
	if reg == nil {
		return &SubscriptionMetrics{}
	}
	upserted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subscriptions_upserted_total",
		Help: "Subscriptions created or updated through the lifecycle endpoint.",
	}, []string{"outcome"})
	invitesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invitations_created_total",
		Help: "Referral invitations issued.",
	})
	redeemed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invitations_redeemed_total",
		Help: "Referral invitations redeemed as part of a subscription.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invitation_rejections_total",
		Help: "Invitation validations that failed, by reason.",
	}, []string{"reason"})
	inviterBonus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inviter_discount_total",
		Help: "Inviter discount propagation attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(upserted, invitesCreated, redeemed, rejections, inviterBonus)
	return &SubscriptionMetrics{
		upserted:       upserted,
		invitesCreated: invitesCreated,
		redeemed:       redeemed,
		rejections:     rejections,
		inviterBonus:   inviterBonus,
	}
}

func (m *SubscriptionMetrics) IncUpserted(outcome string) {
	if m == nil || m.upserted == nil {
		return
	}
	m.upserted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *SubscriptionMetrics) IncInvitationCreated() {
	if m == nil || m.invitesCreated == nil {
		return
	}
	m.invitesCreated.Inc()
}

func (m *SubscriptionMetrics) IncInvitationRedeemed() {
	if m == nil || m.redeemed == nil {
		return
	}
	m.redeemed.Inc()
}

func (m *SubscriptionMetrics) IncInvitationRejected(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *SubscriptionMetrics) IncInviterDiscount(outcome string) {
	if m == nil || m.inviterBonus == nil {
		return
	}
	m.inviterBonus.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
