package service

// export_service.go — CSV / XLSX renditions of the shipments report. Both
// share the same row model: one line per confirmed shipment with counts and
// totals split by item type, plus optional per-product detail sections.

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
)

var exportHeader = []string{
	"Numero", "Data", "Negozio", "Autista", "Stato",
	"N° Prodotti", "Totale Prodotti", "N° Resi", "Totale Resi", "Netto",
}

var productHeader = []string{"Prodotto", "Codice", "Quantità", "Totale"}

func statusLabel(s model.ShipmentStatus) string {
	switch s {
	case model.StatusBozza:
		return "Bozza"
	case model.StatusInConsegna:
		return "In Consegna"
	case model.StatusConsegnata:
		return "Consegnata"
	default:
		return string(s)
	}
}

// reportRow flattens one shipment into the shared report row model.
func reportRow(s *model.Shipment) dto.ShipmentReportRow {
	shippedCount, returnedCount := 0, 0
	for _, item := range s.Items {
		if item.ItemType == model.ItemReturn {
			returnedCount++
		} else {
			shippedCount++
		}
	}
	totals := CalculateShipmentTotals(s.Items)

	shopName, driverName := "", ""
	if s.Shop != nil {
		shopName = s.Shop.Name
	}
	if s.Driver != nil {
		driverName = s.Driver.FullName
	}
	return dto.ShipmentReportRow{
		ID:                 s.ID.String(),
		ShipmentNumber:     s.ShipmentNumber,
		ShipmentDate:       s.ShipmentDate.Format("02/01/2006"),
		ShopName:           shopName,
		DriverName:         driverName,
		Status:             statusLabel(s.Status),
		ProductCount:       shippedCount,
		TotalShipmentValue: totals.TotalShipmentValue,
		ReturnCount:        returnedCount,
		TotalReturnsValue:  totals.TotalReturnsValue,
		NetValue:           totals.NetValue,
	}
}

// exportRow is the CSV/XLSX ordering of the report columns.
func exportRow(s *model.Shipment) []string {
	r := reportRow(s)
	return []string{
		r.ShipmentNumber,
		r.ShipmentDate,
		r.ShopName,
		r.DriverName,
		r.Status,
		strconv.Itoa(r.ProductCount),
		r.TotalShipmentValue,
		strconv.Itoa(r.ReturnCount),
		r.TotalReturnsValue,
		r.NetValue,
	}
}

func productRows(aggs []dto.ProductAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			a.ProductName,
			a.ProductCode,
			a.Quantity.StringFixed(3),
			a.Total.StringFixed(2),
		})
	}
	return rows
}

func (s *reportService) ExportCSV(ctx context.Context, f dto.ReportFilter) ([]byte, error) {
	f, sf := s.normalize(f)
	shipments, _, err := s.shipmentRepo.List(ctx, sf)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range shipments {
		if err := w.Write(exportRow(&shipments[i])); err != nil {
			return nil, err
		}
	}

	if f.Details {
		sold, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemShipment)
		if err != nil {
			return nil, err
		}
		returned, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemReturn)
		if err != nil {
			return nil, err
		}
		for _, section := range []struct {
			title string
			aggs  []dto.ProductAggregate
		}{
			{"Prodotti Venduti", sold},
			{"Prodotti Resi", returned},
		} {
			_ = w.Write([]string{})
			_ = w.Write([]string{section.title})
			_ = w.Write(productHeader)
			for _, row := range productRows(section.aggs) {
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) ExportXLSX(ctx context.Context, f dto.ReportFilter) ([]byte, error) {
	f, sf := s.normalize(f)
	shipments, _, err := s.shipmentRepo.List(ctx, sf)
	if err != nil {
		return nil, err
	}

	xl := excelize.NewFile()
	defer xl.Close()

	const mainSheet = "Spedizioni"
	if err := xl.SetSheetName("Sheet1", mainSheet); err != nil {
		return nil, err
	}

	bold, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	writeRow := func(sheet string, rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return xl.SetSheetRow(sheet, cell, &row)
	}

	if err := writeRow(mainSheet, 1, exportHeader); err != nil {
		return nil, err
	}
	if err := xl.SetRowStyle(mainSheet, 1, 1, bold); err != nil {
		return nil, err
	}
	for i := range shipments {
		if err := writeRow(mainSheet, i+2, exportRow(&shipments[i])); err != nil {
			return nil, err
		}
	}

	if f.Details {
		sold, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemShipment)
		if err != nil {
			return nil, err
		}
		returned, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemReturn)
		if err != nil {
			return nil, err
		}
		for _, section := range []struct {
			sheet string
			aggs  []dto.ProductAggregate
		}{
			{"Prodotti Venduti", sold},
			{"Prodotti Resi", returned},
		} {
			if _, err := xl.NewSheet(section.sheet); err != nil {
				return nil, err
			}
			if err := writeRow(section.sheet, 1, productHeader); err != nil {
				return nil, err
			}
			if err := xl.SetRowStyle(section.sheet, 1, 1, bold); err != nil {
				return nil, err
			}
			for i, row := range productRows(section.aggs) {
				if err := writeRow(section.sheet, i+2, row); err != nil {
					return nil, err
				}
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
