package messaging

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// DeadLetterRecord is a message the consumer could not and must not retry:
// the original raw body plus the failure classification, retained on the
// dead-letter topic for operator inspection and replay.
type DeadLetterRecord struct {
	Body          []byte
	ErrorType     string
	ErrorMessage  string
	CorrelationID string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// DeadLetterWriter appends unprocessable messages to the dead-letter topic.
type DeadLetterWriter struct {
	writer messageWriter
	topic  string
}

// NewDeadLetterWriter constructs a DeadLetterWriter targeting the given topic.
func NewDeadLetterWriter(writer messageWriter, topic string) *DeadLetterWriter {
	return &DeadLetterWriter{writer: writer, topic: topic}
}

// Write publishes the record, carrying the error classification and the
// original correlation id as headers so the body stays byte-identical to
// the failed message.
func (w *DeadLetterWriter) Write(ctx context.Context, rec DeadLetterRecord) error {
	msg := kafka.Message{
		Value: rec.Body,
		Headers: []kafka.Header{
			{Key: HeaderErrorType, Value: []byte(rec.ErrorType)},
			{Key: HeaderErrorMessage, Value: []byte(rec.ErrorMessage)},
		},
	}
	if rec.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: HeaderCorrelationID, Value: []byte(rec.CorrelationID)})
	}
	return w.writer.WriteMessages(ctx, w.topic, msg)
}
