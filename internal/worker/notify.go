package worker

// notify.go — builds the notification payloads for a confirmed shipment.
// Kept here so both the confirm flow and the retry cron compose identical
// messages.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jdirocco/forno/internal/model"
)

// shippedTotal sums the SHIPMENT lines only; returns are never notified.
func shippedTotal(s *model.Shipment) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.ItemType == model.ItemShipment {
			total = total.Add(item.TotalPrice)
		}
	}
	return total
}

// pdfLink builds the public download URL of the DDT, empty when no base URL
// is configured.
func pdfLink(baseURL string, s *model.Shipment) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/api/shipments/" + s.ID.String() + "/pdf"
}

// EmailJobFor composes the DDT mail for the shop. Returns nil when the shop
// has no email address.
func EmailJobFor(s *model.Shipment, companyName, baseURL string) *EmailJobPayload {
	if s.Shop == nil || s.Shop.Email == nil || *s.Shop.Email == "" {
		return nil
	}
	pdfPath := ""
	if s.PDFPath != nil {
		pdfPath = *s.PDFPath
	}
	var cc []string
	if s.Driver != nil && s.Driver.Email != nil && *s.Driver.Email != "" {
		cc = append(cc, *s.Driver.Email)
	}
	driverName := "-"
	if s.Driver != nil {
		driverName = s.Driver.FullName
	}
	body := fmt.Sprintf(
		"Gentile %s,\n\n"+
			"in allegato il documento di trasporto %s del %s.\n\n"+
			"Autista: %s\nTotale: € %s\n\n"+
			"Cordiali saluti,\n%s",
		s.Shop.Name,
		s.ShipmentNumber,
		s.ShipmentDate.Format("02/01/2006"),
		driverName,
		shippedTotal(s).StringFixed(2),
		companyName,
	)
	if link := pdfLink(baseURL, s); link != "" {
		body += "\n\nScarica il documento: " + link
	}
	return &EmailJobPayload{
		ShipmentID: s.ID.String(),
		To:         *s.Shop.Email,
		Cc:         cc,
		Subject:    "Documento di Trasporto - " + s.ShipmentNumber,
		Body:       body,
		PDFPath:    pdfPath,
	}
}

// WhatsAppJobFor composes the WhatsApp message for the shop. Returns nil
// when the shop has no WhatsApp number.
func WhatsAppJobFor(s *model.Shipment, baseURL string) *WhatsAppJobPayload {
	if s.Shop == nil || s.Shop.WhatsappNumber == nil || *s.Shop.WhatsappNumber == "" {
		return nil
	}
	body := fmt.Sprintf(
		"*Documento di Trasporto*\nNumero: %s\nData: %s\nNegozio: %s\nTotale: € %s",
		s.ShipmentNumber,
		s.ShipmentDate.Format("02/01/2006"),
		s.Shop.Name,
		shippedTotal(s).StringFixed(2),
	)
	if link := pdfLink(baseURL, s); link != "" {
		body += "\nScarica il documento: " + link
	}
	return &WhatsAppJobPayload{
		ShipmentID: s.ID.String(),
		To:         *s.Shop.WhatsappNumber,
		Body:       body,
	}
}
