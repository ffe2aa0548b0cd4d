// Command dlqmonitor inspects the dead-letter topic and optionally replays
// records back onto the workload topic once the underlying fault is fixed.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/workload/internal/config"
	"example.com/workload/internal/messaging"
)

func main() {
	replay := flag.Bool("replay", false, "republish dead-letter bodies to the workload topic and commit them")
	wait := flag.Duration("wait", 5*time.Second, "exit after this long without a new dead-letter record")
	flag.Parse()

	cfg := config.Load()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.ConsumerGroupID + "-dlqmonitor",
		Topic:   cfg.DeadLetterTopic,
	})
	defer reader.Close()

	publisher := messaging.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	ctx := context.Background()
	seen, replayed := 0, 0

	for {
		fetchCtx, cancel := context.WithTimeout(ctx, *wait)
		msg, err := reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			log.Fatalf("fetch error: %v", err)
		}
		seen++

		errType := headerValue(msg, messaging.HeaderErrorType)
		errMsg := headerValue(msg, messaging.HeaderErrorMessage)
		corrID := headerValue(msg, messaging.HeaderCorrelationID)
		log.Printf("offset=%d correlationId=%s errorType=%s errorMessage=%s body=%s",
			msg.Offset, corrID, errType, errMsg, msg.Value)

		if !*replay {
			continue
		}

		out := kafka.Message{Key: msg.Key, Value: msg.Value}
		if corrID != "" {
			out.Headers = append(out.Headers, kafka.Header{Key: messaging.HeaderCorrelationID, Value: []byte(corrID)})
		}
		if err := publisher.WriteMessages(ctx, cfg.WorkloadTopic, out); err != nil {
			log.Fatalf("replay failed at offset %d: %v", msg.Offset, err)
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Fatalf("commit failed at offset %d: %v", msg.Offset, err)
		}
		replayed++
	}

	log.Printf("done: %d dead-letter records seen, %d replayed", seen, replayed)
}

func headerValue(msg kafka.Message, key string) string {
	for _, header := range msg.Headers {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}
