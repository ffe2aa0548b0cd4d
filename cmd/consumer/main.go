package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"example.com/workload/internal/cache"
	"example.com/workload/internal/config"
	"example.com/workload/internal/domain"
	"example.com/workload/internal/messaging"
	"example.com/workload/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	service := domain.NewService(postgres.NewStore(pool))

	var summaryCache cache.SummaryCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		summaryCache = cache.NewRedis(client, cfg.SummaryCacheTTL)
	}
	applier := cache.NewInvalidatingApplier(service, summaryCache)

	publisher := messaging.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	dlq := messaging.NewDeadLetterWriter(publisher, cfg.DeadLetterTopic)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		log.Printf("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	var wg sync.WaitGroup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for i := 0; i < cfg.ConsumerWorkers; i++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.ConsumerGroupID,
			Topic:    cfg.WorkloadTopic,
			MinBytes: 1e3,
			MaxBytes: 10e6,
			// CommitInterval stays zero: commits must be synchronous so an
			// uncommitted offset reliably means redelivery.
			RetentionTime:   24 * time.Hour,
			ReadLagInterval: -1,
		})

		proc := messaging.NewProcessor(reader, applier, dlq)

		wg.Add(1)
		go func(worker int, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()

			log.Printf("consumer worker %d started (topic=%s, group=%s)", worker, cfg.WorkloadTopic, cfg.ConsumerGroupID)
			if err := proc.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("consumer worker %d stopped with error: %v", worker, err)
			}
		}(i, reader)
	}

	<-stop
	log.Println("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	wg.Wait()
}
