package notifier

import (
	"context"
	"log"

	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic string, event domain.WorkloadEvent) error
}

// QueueNotifier publishes workload events to the durable queue. Delivery to
// the aggregation side is fire-and-forget from the caller's perspective.
type QueueNotifier struct {
	publisher eventPublisher
	topic     string
	logger    *log.Logger
}

// NewQueueNotifier constructs a QueueNotifier targeting the given topic.
func NewQueueNotifier(publisher eventPublisher, topic string) *QueueNotifier {
	return &QueueNotifier{
		publisher: publisher,
		topic:     topic,
		logger:    log.New(log.Writer(), "[notifier] ", log.LstdFlags),
	}
}

// NotifyWorkloadChange builds the event, ensures a correlation id, and
// submits it to the transport. Any failure comes back wrapped as
// ErrEventPublishFailed.
func (n *QueueNotifier) NotifyWorkloadChange(ctx context.Context, trainer TrainerSnapshot, date domain.CivilDate, durationMinutes int, action domain.ActionType) error {
	ctx, corrID := correlation.Ensure(ctx)
	event := buildEvent(trainer, date, durationMinutes, action)

	if err := n.publisher.Publish(ctx, n.topic, event); err != nil {
		return err
	}

	n.logger.Printf("correlationId=%s sent %s %d minutes for trainer %s to topic %s",
		corrID, action, durationMinutes, trainer.Username, n.topic)
	return nil
}
