package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"

	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
)

// Error type labels attached to dead-letter records.
const (
	errTypeMalformed = "MalformedEvent"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Applier applies a validated workload event to the aggregate store.
type Applier interface {
	Apply(ctx context.Context, event domain.WorkloadEvent) error
}

// DeadLetterer routes unprocessable messages to the dead-letter topic.
type DeadLetterer interface {
	Write(ctx context.Context, rec DeadLetterRecord) error
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls workload events from Kafka and applies them to the
// aggregate store. Every delivered message ends in exactly one of three
// states: applied and committed, dead-lettered and committed, or left
// uncommitted for redelivery after a transient failure.
type Processor struct {
	reader  Reader
	applier Applier
	dlq     DeadLetterer
	logger  *log.Logger
}

// NewProcessor constructs a Processor.
func NewProcessor(reader Reader, applier Applier, dlq DeadLetterer, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		applier: applier,
		dlq:     dlq,
		logger:  log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes messages until the context is
// cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		p.process(ctx, msg)
	}
}

// process handles one delivery. The correlation id extracted from the
// message headers lives on procCtx only, so it is dropped when processing
// of this message ends regardless of outcome.
func (p *Processor) process(ctx context.Context, msg kafka.Message) {
	corrID := string(headerValue(msg, HeaderCorrelationID))
	procCtx := correlation.WithID(ctx, corrID)

	var event domain.WorkloadEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		p.logger.Printf("correlationId=%s decode error (partition=%d, offset=%d): %v", corrID, msg.Partition, msg.Offset, err)
		p.deadLetter(procCtx, msg, corrID, err)
		return
	}

	err := p.applier.Apply(procCtx, event)
	switch {
	case err == nil:
		if commitErr := p.reader.CommitMessages(procCtx, msg); commitErr != nil {
			p.logger.Printf("correlationId=%s commit error: %v", corrID, commitErr)
			return
		}
		recordProcessed(msg, event)
		p.logger.Printf("correlationId=%s applied %s %d minutes for trainer %s", corrID, event.ActionType, event.TrainingDuration, event.TrainerUsername)
	case errors.Is(err, domain.ErrMalformedEvent):
		p.logger.Printf("correlationId=%s rejected event for trainer %q: %v", corrID, event.TrainerUsername, err)
		p.deadLetter(procCtx, msg, corrID, err)
	default:
		// Transient store failure: leave the offset uncommitted so the
		// broker redelivers.
		p.logger.Printf("correlationId=%s store failure, leaving message for redelivery: %v", corrID, err)
		recordStoreFailure(msg.Topic)
	}
}

// deadLetter writes the poison message to the dead-letter topic and commits
// it so it is never retried. If the dead-letter write itself fails the offset
// stays uncommitted and the failure is logged as an operational alarm.
func (p *Processor) deadLetter(ctx context.Context, msg kafka.Message, corrID string, cause error) {
	rec := DeadLetterRecord{
		Body:          msg.Value,
		ErrorType:     errTypeMalformed,
		ErrorMessage:  cause.Error(),
		CorrelationID: corrID,
	}

	if err := p.dlq.Write(ctx, rec); err != nil {
		p.logger.Printf("ALARM correlationId=%s dead-letter publish failed, message may be lost: %v", corrID, err)
		recordDeadLetterFailure(msg.Topic)
		return
	}

	if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
		p.logger.Printf("correlationId=%s commit error after dead-letter: %v", corrID, commitErr)
		return
	}
	recordDeadLettered(msg.Topic)
}

func headerValue(msg kafka.Message, key string) []byte {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value
		}
	}
	return nil
}
