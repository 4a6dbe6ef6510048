package worker

// email_worker.go
// Processes DDT email jobs from QueueEmail: sends the delivery note PDF to
// the shop (cc the driver) and records the send on the shipment.

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/repository"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ShipmentID string   `json:"shipment_id"`
	To         string   `json:"to"`
	Cc         []string `json:"cc,omitempty"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	PDFPath    string   `json:"pdf_path"`
}

type EmailWorker struct {
	mailer    *infra.Mailer
	shipments repository.ShipmentRepository
}

func NewEmailWorker(mailer *infra.Mailer, shipments repository.ShipmentRepository) *EmailWorker {
	return &EmailWorker{mailer: mailer, shipments: shipments}
}

// Process sends the DDT as an attachment and flags the shipment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.To == "" {
		log.Warn().Str("shipment_id", payload.ShipmentID).Msg("email_worker: shop has no email — skipping")
		return
	}

	if err := w.mailer.SendDocument(payload.To, payload.Cc, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		log.Error().Err(err).Str("to", payload.To).Str("shipment_id", payload.ShipmentID).
			Msg("email_worker: failed to send email")
		return
	}

	if id, err := uuid.Parse(payload.ShipmentID); err == nil {
		if err := w.shipments.MarkEmailSent(ctx, id); err != nil {
			log.Warn().Err(err).Str("shipment_id", payload.ShipmentID).
				Msg("email_worker: sent but could not flag shipment")
		}
	}
	log.Info().Str("to", payload.To).Str("shipment_id", payload.ShipmentID).
		Msg("email_worker: DDT sent")
}
