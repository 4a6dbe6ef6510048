package infra

// pdf.go — DDT (Documento di Trasporto) generation using go-pdf/fpdf.
// Produces an A4 delivery note with:
//   - Company header
//   - Document number, date, shop, address, driver
//   - Item table (code, product, quantity, unit, unit price, line total)
//   - Bold grand total
//   - Free-form notes
//   - Signature line for the receiving shop
//
// The output file is saved to storagePath/DDT_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/jdirocco/forno/internal/model"
)

// GenerateDDT renders the delivery note for a confirmed shipment. Only
// SHIPMENT lines appear on the document; returns are reconciled later and
// never printed here. Returns the absolute path to the generated file.
func GenerateDDT(s *model.Shipment, companyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("DDT_%s.pdf", s.ShipmentNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(companyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, "Documento di Trasporto (DDT)", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(4)

	// ── Document info ─────────────────────────────────────────────────────────
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW-35, 6, tr(value), "", 1, "L", false, 0, "")
	}
	row("Numero:", s.ShipmentNumber)
	row("Data:", s.ShipmentDate.Format("02/01/2006"))
	if s.Shop != nil {
		row("Negozio:", s.Shop.Name)
		row("Indirizzo:", s.Shop.Address+" - "+s.Shop.City)
	}
	if s.Driver != nil {
		row("Autista:", s.Driver.FullName)
	}
	pdf.Ln(4)

	// ── Item table ────────────────────────────────────────────────────────────
	colW := []float64{
		contentW * 0.13, // code
		contentW * 0.37, // product
		contentW * 0.12, // qty
		contentW * 0.10, // unit
		contentW * 0.13, // unit price
		contentW * 0.15, // line total
	}
	headers := []string{"Codice", "Prodotto", "Quantità", "Unità", "Prezzo", "Totale"}
	aligns := []string{"L", "L", "R", "C", "R", "R"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(colW[i], 7, tr(h), "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, item := range s.Items {
		if item.ItemType != model.ItemShipment {
			continue
		}
		code, name, unit := "", "", ""
		if item.Product != nil {
			code, name, unit = item.Product.Code, item.Product.Name, item.Product.Unit
		}
		if len(name) > 40 {
			name = name[:39] + "…"
		}
		cells := []string{
			code,
			name,
			item.Quantity.StringFixed(3),
			unit,
			"€ " + item.UnitPrice.StringFixed(2),
			"€ " + item.TotalPrice.StringFixed(2),
		}
		for i, v := range cells {
			pdf.CellFormat(colW[i], 6, tr(v), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
		total = total.Add(item.TotalPrice)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colW[0]+colW[1]+colW[2]+colW[3]+colW[4], 7, "TOTALE", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colW[5], 7, tr("€ "+total.StringFixed(2)), "1", 1, "R", false, 0, "")

	// ── Notes ─────────────────────────────────────────────────────────────────
	if s.Notes != nil && *s.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Note:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(*s.Notes), "", "L", false)
	}

	// ── Signature ─────────────────────────────────────────────────────────────
	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Firma per ricevuta", "T", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
