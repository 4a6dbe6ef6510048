package tests

import (
	"testing"

	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notifiableShipment() *model.Shipment {
	email := "negozio@example.com"
	wa := "+393331234567"
	return &model.Shipment{
		ID:             uuid.New(),
		ShipmentNumber: "SHP-2026-000042",
		ShipmentDate:   day(2026, 8, 20),
		Status:         model.StatusInConsegna,
		Shop:           &model.Shop{ID: uuid.New(), Name: "Negozio Centro", Email: &email, WhatsappNumber: &wa},
	}
}

func TestEmailNotificationCarriesDownloadLink(t *testing.T) {
	s := notifiableShipment()
	job := worker.EmailJobFor(s, "Panificio Test", "https://forno.example.com/")
	require.NotNil(t, job)
	assert.Contains(t, job.Body, "https://forno.example.com/api/shipments/"+s.ID.String()+"/pdf")
}

func TestWhatsAppNotificationCarriesDownloadLink(t *testing.T) {
	s := notifiableShipment()
	job := worker.WhatsAppJobFor(s, "https://forno.example.com")
	require.NotNil(t, job)
	assert.Contains(t, job.Body, "https://forno.example.com/api/shipments/"+s.ID.String()+"/pdf")
}

func TestNotificationWithoutBaseURLOmitsLink(t *testing.T) {
	s := notifiableShipment()

	mail := worker.EmailJobFor(s, "Panificio Test", "")
	require.NotNil(t, mail)
	assert.NotContains(t, mail.Body, "Scarica il documento")

	wa := worker.WhatsAppJobFor(s, "")
	require.NotNil(t, wa)
	assert.NotContains(t, wa.Body, "Scarica il documento")
}
