package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
	"github.com/Abhishek-Jatav/bookMyCare/libs/kafkax"
	otelx "github.com/Abhishek-Jatav/bookMyCare/libs/otel"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
}

// Publisher relays committed outbox rows to Kafka, one topic per event type.
// Delivery is at least once: a crash between the write and the commit
// republishes the batch, and consumers dedupe on event_id.
type Publisher struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
	cfg    PublisherConfig
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{pool: pool, repo: repo, logger: logger, cfg: cfg}
}

func (p *Publisher) Run(ctx context.Context) {
	brokers := kafkax.SplitBrokers(p.cfg.Brokers)
	if len(brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()

	p.logger.Info("outbox publisher started", "brokers", brokers, "every", p.cfg.PollEvery)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.PollEvery):
		}
		// Drain backlogs without waiting a full interval between batches.
		for ctx.Err() == nil {
			n, err := p.publishBatch(ctx, writer)
			if err != nil {
				p.logger.Error("outbox publish failed", "err", err)
				break
			}
			if n > 0 {
				p.logger.Debug("outbox events published", "count", n)
			}
			if n < p.cfg.BatchSize {
				break
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context, writer MessageWriter) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	records, err := p.repo.Claim(ctx, tx, p.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, len(records))
	ids := make([]int64, len(records))
	for i, r := range records {
		msgs[i] = BuildMessage(ctx, r)
		ids[i] = r.ID
	}
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		_ = tx.Rollback(ctx)
		if ferr := p.repo.RecordFailure(ctx, p.pool, ids, err); ferr != nil {
			p.logger.Warn("outbox failure not recorded", "err", ferr)
		}
		return 0, fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(records), tx.Commit(ctx)
}

// BuildMessage turns an outbox record into a Kafka message on the topic named
// by its event type, keyed by aggregate id so one booking's events stay ordered.
func BuildMessage(ctx context.Context, r Record) kafka.Message {
	msgCtx := otelx.ContextWithTraceContext(ctx, r.Traceparent, r.Tracestate)
	return kafkax.NewEventMessage(msgCtx, r.EventType, []byte(r.AggregateID), r.Payload, kafkax.EventMeta{
		EventID:   r.EventID,
		EventType: r.EventType,
	})
}
