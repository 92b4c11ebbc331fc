package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verification pipeline
	VerificationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_verification_decisions_total",
			Help: "Total verification decisions by outcome and task type",
		},
		[]string{"outcome", "task_type"},
	)

	FraudFlagsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_fraud_flags_total",
			Help: "Total fraud heuristic flags raised",
		},
		[]string{"flag"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskhive_submission_processing_seconds",
			Help:    "Wall time to process one verification submission",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Payments
	PaymentInitiations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_payment_initiations_total",
			Help: "Total payment initiations by result",
		},
		[]string{"result"},
	)

	// Participant lifecycle
	CapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskhive_capacity_rejections_total",
			Help: "Applications or accepts rejected by the capacity guard",
		},
	)

	ParticipantTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskhive_participant_transitions_total",
			Help: "Participant status transitions",
		},
		[]string{"to_status"},
	)
)
