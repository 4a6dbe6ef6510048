package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues notifications for
// confirmed shipments still missing an email or WhatsApp send. Uses the
// Circuit Breaker state to avoid hammering a downed Twilio.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/repository"
)

const (
	retryTickInterval = 60 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Shipments     repository.ShipmentRepository
	Dispatcher    *Dispatcher
	CB            *infra.CircuitBreaker
	CompanyName   string
	PublicBaseURL string
}

// StartRetryCron launches a background goroutine that ticks every minute,
// queries shipments with pending notifications, and re-enqueues the jobs.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	shipments, err := cfg.Shipments.ListUnnotified(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending notifications")
		return
	}
	if len(shipments) == 0 {
		return
	}

	log.Info().Int("count", len(shipments)).Msg("retry_cron: re-enqueueing notifications")

	for i := range shipments {
		s := &shipments[i]

		if !s.EmailSent {
			if job := EmailJobFor(s, cfg.CompanyName, cfg.PublicBaseURL); job != nil {
				if err := cfg.Dispatcher.EnqueueEmail(ctx, job); err != nil {
					log.Warn().Err(err).Str("shipment", s.ShipmentNumber).Msg("retry_cron: enqueue email failed")
				}
			}
		}

		// Skip WhatsApp while the breaker is open — the jobs would only
		// burn their retries against a dead API.
		if !s.WhatsappSent && cfg.CB.State() != infra.CBOpen {
			if job := WhatsAppJobFor(s, cfg.PublicBaseURL); job != nil {
				if err := cfg.Dispatcher.EnqueueWhatsApp(ctx, job); err != nil {
					log.Warn().Err(err).Str("shipment", s.ShipmentNumber).Msg("retry_cron: enqueue whatsapp failed")
				}
			}
		}
	}
}
