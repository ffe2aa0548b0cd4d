// Package messaging provides the Kafka transport for workload events: a
// publisher, a consumer processor, and the dead-letter writer.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
)

// ErrEventPublishFailed indicates the event could not be handed to the
// transport. Callers on the domain-action path treat it as a non-fatal
// warning: the business operation that triggered the event already
// committed.
var ErrEventPublishFailed = errors.New("workload event publish failed")

// Record headers. The correlation id travels out of band, never in the body.
const (
	HeaderCorrelationID = "correlation_id"
	HeaderErrorType     = "error_type"
	HeaderErrorMessage  = "error_message"
)

// Publisher lazily manages one kafka.Writer per topic.
type Publisher struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish serializes the event and writes it to the topic, keyed by trainer
// username and carrying the context's correlation id as a record header.
func (p *Publisher) Publish(ctx context.Context, topic string, event domain.WorkloadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: serialize: %v", ErrEventPublishFailed, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TrainerUsername),
		Value: body,
	}
	if id, ok := correlation.FromContext(ctx); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(id)})
	}

	if err := p.WriteMessages(ctx, topic, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrEventPublishFailed, err)
	}
	return nil
}

// WriteMessages writes raw messages to the given topic, creating a writer if
// necessary.
func (p *Publisher) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
