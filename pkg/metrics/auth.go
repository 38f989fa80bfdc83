package metrics

import "github.com/prometheus/client_golang/prometheus"

// Identity resolution outcomes.
const (
	OutcomeVerified = "verified"
	OutcomeRevoked  = "revoked"
	OutcomeInvalid  = "invalid"
)

// AuthMetrics counts identity resolution results and guard denials.
type AuthMetrics struct {
	resolutions *prometheus.CounterVec
	denials     *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Identity resolution attempts by channel and outcome.",
	}, []string{"channel", "outcome"})
	denials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Requests rejected by authorization guards.",
	}, []string{"guard", "status"})
	reg.MustRegister(resolutions, denials)
	return &AuthMetrics{resolutions: resolutions, denials: denials}
}

func (m *AuthMetrics) IncResolution(channel, outcome string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

func (m *AuthMetrics) IncDenial(guard, status string) {
	if m == nil || m.denials == nil {
		return
	}
	m.denials.WithLabelValues(normalizeLabel(guard), normalizeLabel(status)).Inc()
}
