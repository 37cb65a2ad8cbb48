package metrics

import (
	"time"

	"lingvovault/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService struct {
	log *tracing.Logger
}

var (
	updatesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_updates_handled_total",
			Help: "Total number of updates handled by the poller",
		},
		[]string{"status"},
	)

	gateDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_gate_denials_total",
			Help: "Total number of updates denied by the gate",
		},
		[]string{"stage", "reason"},
	)

	membershipVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_membership_verdicts_total",
			Help: "Total number of membership oracle verdicts",
		},
		[]string{"verdict"},
	)

	commandsUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_commands_used_total",
			Help: "Total number of commands used",
		},
		[]string{"command"},
	)

	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_messages_sent_total",
			Help: "Total number of messages sent by the diplomat",
		},
		[]string{"status"},
	)

	conversationSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_conversation_steps_total",
			Help: "Total number of conversation flow steps processed",
		},
		[]string{"step"},
	)

	handlerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lingvovault_handler_panics_total",
			Help: "Total number of recovered handler panics",
		},
	)

	filesDownloaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lingvovault_files_downloaded_total",
			Help: "Total number of files delivered to users",
		},
	)

	broadcastDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingvovault_broadcast_deliveries_total",
			Help: "Total number of broadcast delivery attempts",
		},
		[]string{"status"},
	)

	updateProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lingvovault_update_processing_duration_seconds",
			Help:    "Total duration of update processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	statsTotalUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingvovault_stats_total_users",
			Help: "Total number of users",
		},
	)

	statsBlockedUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingvovault_stats_blocked_users",
			Help: "Total number of blocked users",
		},
	)

	statsTotalFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingvovault_stats_total_files",
			Help: "Total number of files in the vault",
		},
	)

	statsTotalDownloads = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lingvovault_stats_total_downloads",
			Help: "Total downloads recorded",
		},
	)
)

func init() {
	prometheus.MustRegister(updatesHandled)
	prometheus.MustRegister(gateDenials)
	prometheus.MustRegister(membershipVerdicts)
	prometheus.MustRegister(commandsUsed)
	prometheus.MustRegister(messagesSent)
	prometheus.MustRegister(conversationSteps)
	prometheus.MustRegister(handlerPanics)
	prometheus.MustRegister(filesDownloaded)
	prometheus.MustRegister(broadcastDeliveries)
	prometheus.MustRegister(updateProcessingDuration)
	prometheus.MustRegister(statsTotalUsers)
	prometheus.MustRegister(statsBlockedUsers)
	prometheus.MustRegister(statsTotalFiles)
	prometheus.MustRegister(statsTotalDownloads)
}

func NewMetricsService(log *tracing.Logger) *MetricsService {
	return &MetricsService{
		log: log,
	}
}

func (s *MetricsService) RecordUpdateHandled(status string) {
	updatesHandled.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordGateDenial(stage string, reason string) {
	gateDenials.WithLabelValues(stage, reason).Inc()
}

func (s *MetricsService) RecordMembershipVerdict(verdict string) {
	membershipVerdicts.WithLabelValues(verdict).Inc()
}

func (s *MetricsService) RecordCommandUsed(command string) {
	commandsUsed.WithLabelValues(command).Inc()
}

func (s *MetricsService) RecordMessageSent(status string) {
	messagesSent.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordConversationStep(step string) {
	conversationSteps.WithLabelValues(step).Inc()
}

func (s *MetricsService) RecordHandlerPanic() {
	handlerPanics.Inc()
}

func (s *MetricsService) RecordFileDownloaded() {
	filesDownloaded.Inc()
}

func (s *MetricsService) RecordBroadcastDelivery(status string) {
	broadcastDeliveries.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordUpdateProcessingDuration(duration time.Duration) {
	updateProcessingDuration.Observe(duration.Seconds())
}

func (s *MetricsService) SetTotalUsers(count float64) {
	statsTotalUsers.Set(count)
}

func (s *MetricsService) SetBlockedUsers(count float64) {
	statsBlockedUsers.Set(count)
}

func (s *MetricsService) SetTotalFiles(count float64) {
	statsTotalFiles.Set(count)
}

func (s *MetricsService) SetTotalDownloads(count float64) {
	statsTotalDownloads.Set(count)
}
