package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/medinet/credgate/internal/progress"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	referralsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referrals_recorded_total",
			Help: "Total number of referral credits written to the ledger",
		},
	)
	referralNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_notifications_total",
			Help: "Total number of referral notifications split by delivery status",
		},
		[]string{"status"},
	)
	credentialsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credentials_issued_total",
			Help: "Total number of credentials generated",
		},
	)
	issuanceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuance_failures_total",
			Help: "Total number of failed issuance attempts by reason",
		},
		[]string{"reason"},
	)
	storeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_requests_total",
			Help: "Total number of backend store requests by method and status",
		},
		[]string{"method", "status"},
	)
	membershipChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_checks_total",
			Help: "Total number of channel membership lookups by result",
		},
		[]string{"result"},
	)
	progressTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_transitions_total",
			Help: "Total number of user progression transitions",
		},
		[]string{"from", "to"},
	)
)

func init() {
	progress.RegisterTransitionRecorder(RecordProgressTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordReferral counts a successful ledger credit.
func RecordReferral() {
	referralsRecordedTotal.Inc()
}

// RecordReferralNotification counts a notification delivery attempt.
func RecordReferralNotification(status string) {
	if status == "" {
		status = "unknown"
	}

	referralNotificationsTotal.WithLabelValues(status).Inc()
}

// RecordCredentialIssued counts a generated credential.
func RecordCredentialIssued() {
	credentialsIssuedTotal.Inc()
}

// RecordIssuanceFailure counts a failed issuance attempt.
func RecordIssuanceFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}

	issuanceFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordStoreRequest counts a backend store request.
func RecordStoreRequest(method, status string) {
	if method == "" {
		method = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	storeRequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordMembershipCheck counts a channel membership lookup.
func RecordMembershipCheck(result string) {
	if result == "" {
		result = "unknown"
	}

	membershipChecksTotal.WithLabelValues(result).Inc()
}

// RecordProgressTransition tracks user progression steps.
func RecordProgressTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	progressTransitionsTotal.WithLabelValues(from, to).Inc()
}
