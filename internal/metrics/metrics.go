package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the submission workflow. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	SubmissionsCreated prometheus.Counter

	// Transition attempts by event and result ("ok" or the error kind).
	Transitions *prometheus.CounterVec

	// Carbon units issued, summed across all issuances.
	CreditsIssued prometheus.Counter
}

// New creates the workflow metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SubmissionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bluecarbon_submissions_created_total",
			Help: "Total number of submissions created",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bluecarbon_transitions_total",
			Help: "Lifecycle transition attempts by event and result",
		}, []string{"event", "result"}),
		CreditsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "bluecarbon_credits_issued_total",
			Help: "Total carbon credit units issued",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.SubmissionsCreated.Inc()
	}
}

func (m *Metrics) IncrementTransition(event, result string) {
	if m != nil {
		m.Transitions.WithLabelValues(event, result).Inc()
	}
}

func (m *Metrics) AddCreditsIssued(v float64) {
	if m != nil {
		m.CreditsIssued.Add(v)
	}
}
