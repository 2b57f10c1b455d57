package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/novamart/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTick  = time.Second
	defaultBatch = 100
)

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPoller struct {
	timeout time.Duration
	tick    time.Duration
	batch   int
	repo    repository.OutboxRepository
	writer  Writer
	log     *slog.Logger
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(repo repository.OutboxRepository, writer Writer, tick time.Duration, log *slog.Logger) *OutboxPoller {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &OutboxPoller{
		timeout: 5 * time.Second,
		tick:    tick,
		batch:   defaultBatch,
		repo:    repo,
		writer:  writer,
		log:     log,
	}
}

// Run publishes pending outbox events every tick until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublishedEvents returns the number of events published and marked.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batch)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch outbox events", slog.Any("error", err))
		return 0
	}

	done := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.WarnContext(ctx, "failed to publish outbox event",
				slog.Int64("event_id", event.ID), slog.Any("error", err))
			continue
		}
		// a crash here means the event is published again on the next tick
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.ErrorContext(ctx, "failed to mark outbox event as processed",
				slog.Int64("event_id", event.ID), slog.Any("error", err))
			continue
		}
		done++
	}
	if done > 0 {
		p.log.DebugContext(ctx, "outbox events published", slog.Int("count", done))
	}
	return done
}

func (p *OutboxPoller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
