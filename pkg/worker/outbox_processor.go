package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
	"github.com/swasthlink/health-api/pkg/messaging"
	"github.com/swasthlink/health-api/pkg/metrics"
)

// OutboxProcessor polls committed outbox events and publishes them to the
// message broker. Events that fail to publish are marked FAILED with the error
// recorded; consumers of the consent channels are external services.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	metrics  *metrics.Metrics
	interval time.Duration
	batch    int
}

func NewOutboxProcessor(repo repository.OutboxRepository, broker messaging.Broker, m *metrics.Metrics, interval time.Duration, batch int) *OutboxProcessor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &OutboxProcessor{
		repo:     repo,
		broker:   broker,
		metrics:  m,
		interval: interval,
		batch:    batch,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox processor stopping")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				log.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.repo.GetPendingEvents(ctx, p.batch)
	if err != nil {
		return err
	}

	for _, event := range events {
		start := time.Now()
		err := p.broker.Publish(ctx, event.EventType, event.Payload)
		if p.metrics != nil {
			p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())
		}

		if err != nil {
			msg := err.Error()
			if uerr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &msg); uerr != nil {
				log.Error().Err(uerr).Str("event_id", event.ID.String()).Msg("failed to mark event failed")
			}
			if p.metrics != nil {
				p.metrics.OutboxEventsFailed.Inc()
			}
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish outbox event")
			continue
		}

		if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark event processed")
			continue
		}
		if p.metrics != nil {
			p.metrics.OutboxEventsProcessed.Inc()
		}
	}

	return nil
}
