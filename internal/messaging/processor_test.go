package messaging

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/workload/internal/correlation"
	"example.com/workload/internal/domain"
)

const goodPayload = `{
	"trainerUsername": "john.doe",
	"trainerFirstName": "John",
	"trainerLastName": "Doe",
	"isActive": true,
	"trainingDate": "2025-01-15",
	"trainingDuration": 60,
	"actionType": "ADD"
}`

func workloadMessage(payload, corrID string) kafka.Message {
	msg := kafka.Message{
		Topic:  "trainer_workload_events",
		Offset: 10,
		Time:   time.Now().UTC(),
		Value:  []byte(payload),
	}
	if corrID != "" {
		msg.Headers = []kafka.Header{{Key: HeaderCorrelationID, Value: []byte(corrID)}}
	}
	return msg
}

func newTestProcessor(reader *stubReader, applier *stubApplier, dlq *stubDLQ) *Processor {
	return NewProcessor(reader, applier, dlq, WithLogger(log.New(testWriter{}, "", 0)))
}

func TestProcessorAppliesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{messages: []kafka.Message{workloadMessage(goodPayload, "tx-123")}}
	applier := &stubApplier{}
	dlq := &stubDLQ{}

	err := newTestProcessor(reader, applier, dlq).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, applier.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Empty(t, dlq.records)
	require.Equal(t, "john.doe", applier.last.TrainerUsername)
	require.Equal(t, domain.ActionAdd, applier.last.ActionType)
	require.Equal(t, "tx-123", applier.lastCorrID, "correlation id must reach the apply context")
}

func TestProcessorDeadLettersUndecodablePayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{messages: []kafka.Message{workloadMessage(`{not json`, "tx-456")}}
	applier := &stubApplier{}
	dlq := &stubDLQ{}

	err := newTestProcessor(reader, applier, dlq).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, applier.calls, "store must never see a malformed message")
	require.Len(t, dlq.records, 1)
	require.Equal(t, 1, reader.commitCalls, "poison message must be committed, not retried")

	rec := dlq.records[0]
	require.Equal(t, "MalformedEvent", rec.ErrorType)
	require.NotEmpty(t, rec.ErrorMessage)
	require.Equal(t, []byte(`{not json`), rec.Body)
	require.Equal(t, "tx-456", rec.CorrelationID)
}

func TestProcessorDeadLettersInvalidEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := `{
		"trainerUsername": "john.doe",
		"trainerFirstName": "John",
		"trainerLastName": "Doe",
		"isActive": true,
		"trainingDate": "2025-01-15",
		"trainingDuration": -10,
		"actionType": "ADD"
	}`
	reader := &stubReader{messages: []kafka.Message{workloadMessage(payload, "")}}
	applier := &stubApplier{err: domain.WorkloadEvent{TrainingDuration: -10}.Validate()}
	dlq := &stubDLQ{}

	err := newTestProcessor(reader, applier, dlq).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, dlq.records, 1, "exactly one dead-letter record")
	require.Equal(t, 1, reader.commitCalls)
}

func TestProcessorLeavesMessageOnTransientFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{messages: []kafka.Message{workloadMessage(goodPayload, "")}}
	applier := &stubApplier{err: errors.New("store unreachable")}
	dlq := &stubDLQ{}

	err := newTestProcessor(reader, applier, dlq).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, applier.calls)
	require.Zero(t, reader.commitCalls, "transient failure must not acknowledge the message")
	require.Empty(t, dlq.records, "transient failure must not dead-letter")
}

func TestProcessorSkipsCommitWhenDeadLetterWriteFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{messages: []kafka.Message{workloadMessage(`{not json`, "")}}
	applier := &stubApplier{}
	dlq := &stubDLQ{err: errors.New("dlq topic unavailable")}

	err := newTestProcessor(reader, applier, dlq).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, reader.commitCalls, "message must stay uncommitted when the DLQ write fails")
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubApplier struct {
	calls      int
	err        error
	last       domain.WorkloadEvent
	lastCorrID string
}

func (a *stubApplier) Apply(ctx context.Context, event domain.WorkloadEvent) error {
	a.calls++
	a.last = event
	a.lastCorrID, _ = correlation.FromContext(ctx)
	return a.err
}

type stubDLQ struct {
	records []DeadLetterRecord
	err     error
}

func (d *stubDLQ) Write(_ context.Context, rec DeadLetterRecord) error {
	if d.err != nil {
		return d.err
	}
	d.records = append(d.records, rec)
	return nil
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
