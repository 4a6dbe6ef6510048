package worker

// whatsapp_worker.go
// Processes WhatsApp notification jobs from QueueWhatsApp through the
// Twilio client, guarded by the circuit breaker. Retries with exponential
// backoff; jobs that exhaust their retries go to the DLQ.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/repository"
)

const maxWhatsAppAttempts = 3

// WhatsAppJobPayload is the job envelope sent to QueueWhatsApp.
type WhatsAppJobPayload struct {
	ShipmentID string `json:"shipment_id"`
	To         string `json:"to"` // E.164 without the whatsapp: prefix
	Body       string `json:"body"`
}

type WhatsAppWorker struct {
	twilio    *infra.TwilioClient
	cb        *infra.CircuitBreaker
	shipments repository.ShipmentRepository
	rdb       *redis.Client
}

func NewWhatsAppWorker(twilio *infra.TwilioClient, cb *infra.CircuitBreaker, shipments repository.ShipmentRepository, rdb *redis.Client) *WhatsAppWorker {
	return &WhatsAppWorker{twilio: twilio, cb: cb, shipments: shipments, rdb: rdb}
}

func (w *WhatsAppWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload WhatsAppJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("whatsapp_worker: invalid payload")
		return
	}
	if payload.To == "" {
		log.Warn().Str("shipment_id", payload.ShipmentID).Msg("whatsapp_worker: shop has no whatsapp number — skipping")
		return
	}

	sendErr := withRetry(ctx, maxWhatsAppAttempts, func(attempt int) error {
		return w.cb.Execute(func() error {
			_, err := w.twilio.SendWhatsApp(ctx, payload.To, payload.Body)
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).
					Str("shipment_id", payload.ShipmentID).
					Msg("whatsapp_worker: send attempt failed")
			}
			return err
		})
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueWhatsApp, JobTypeWhatsApp, raw, sendErr.Error(), maxWhatsAppAttempts)
		return
	}

	if id, err := uuid.Parse(payload.ShipmentID); err == nil {
		if err := w.shipments.MarkWhatsAppSent(ctx, id); err != nil {
			log.Warn().Err(err).Str("shipment_id", payload.ShipmentID).
				Msg("whatsapp_worker: sent but could not flag shipment")
		}
	}
	log.Info().Str("to", payload.To).Str("shipment_id", payload.ShipmentID).
		Msg("whatsapp_worker: message sent")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
