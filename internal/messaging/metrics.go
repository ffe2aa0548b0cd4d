package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"example.com/workload/internal/domain"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workload_service",
		Subsystem: "consumer",
		Name:      "events_applied_total",
		Help:      "Number of workload events successfully applied to the store.",
	}, []string{"topic", "action"})

	deadLetteredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workload_service",
		Subsystem: "consumer",
		Name:      "events_dead_lettered_total",
		Help:      "Number of messages routed to the dead-letter topic.",
	}, []string{"topic"})

	storeFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workload_service",
		Subsystem: "consumer",
		Name:      "store_failures_total",
		Help:      "Number of transient store failures leaving messages for redelivery.",
	}, []string{"topic"})

	deadLetterFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workload_service",
		Subsystem: "consumer",
		Name:      "dead_letter_publish_failures_total",
		Help:      "Number of failed dead-letter writes; messages at risk of loss.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workload_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successfully applied message per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, deadLetteredCounter, storeFailureCounter, deadLetterFailureCounter, lastMessageGauge)
}

func recordProcessed(msg kafka.Message, event domain.WorkloadEvent) {
	processedCounter.WithLabelValues(msg.Topic, string(event.ActionType)).Inc()
	if !msg.Time.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Time.Unix()))
	}
}

func recordDeadLettered(topic string) {
	deadLetteredCounter.WithLabelValues(topic).Inc()
}

func recordStoreFailure(topic string) {
	storeFailureCounter.WithLabelValues(topic).Inc()
}

func recordDeadLetterFailure(topic string) {
	deadLetterFailureCounter.WithLabelValues(topic).Inc()
}
