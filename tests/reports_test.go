package tests

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
	"github.com/jdirocco/forno/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDashboardSummary(t *testing.T) {
	repo := newStubShipmentRepo()
	repo.aggregates = dto.ShipmentAggregates{
		TotalShipmentAmount: dec("100.00"),
		TotalReturnAmount:   dec("15.00"),
		NetTotal:            dec("85.00"),
	}
	repo.sold = []dto.ProductAggregate{
		{ProductCode: "PANE-001", ProductName: "Pane Casereccio", Quantity: dec("40"), Total: dec("80.00")},
	}

	delivered := &model.Shipment{ID: uuid.New(), ShopID: uuid.New(), Status: model.StatusConsegnata, ShipmentDate: day(2026, 8, 10)}
	inTransit := &model.Shipment{ID: uuid.New(), ShopID: uuid.New(), Status: model.StatusInConsegna, ShipmentDate: day(2026, 8, 11)}
	repo.shipments[delivered.ID] = delivered
	repo.shipments[inTransit.ID] = inTransit

	svc := service.NewReportService(repo)
	resp, err := svc.Dashboard(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Summary.ShipmentCount)
	assert.Equal(t, int64(1), resp.Summary.DeliveredCount)
	assert.Equal(t, "100.00", resp.Summary.TotalShipmentValue.StringFixed(2))
	assert.Equal(t, "85.00", resp.Summary.NetValue.StringFixed(2))
	require.Len(t, resp.ProductsSold, 1)
	assert.Equal(t, "PANE-001", resp.ProductsSold[0].ProductCode)
}

func TestDashboardChartDailyBuckets(t *testing.T) {
	repo := newStubShipmentRepo()
	repo.daily = []repository.DailyTotal{
		{Day: day(2026, 8, 10), ItemType: "SHIPMENT", Amount: dec("20.00")},
		{Day: day(2026, 8, 10), ItemType: "RETURN", Amount: dec("5.00")},
		{Day: day(2026, 8, 11), ItemType: "SHIPMENT", Amount: dec("30.00")},
	}

	svc := service.NewReportService(repo)
	resp, err := svc.Dashboard(context.Background(), dto.ReportFilter{GroupBy: "DAILY"})
	require.NoError(t, err)

	points := resp.ChartData.Points
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-10", points[0].Label)
	assert.Equal(t, "15.00", points[0].Net.StringFixed(2))
	assert.Equal(t, "2026-08-11", points[1].Label)
	assert.Equal(t, "30.00", points[1].Net.StringFixed(2))
}

func TestDashboardChartMonthlyBuckets(t *testing.T) {
	repo := newStubShipmentRepo()
	repo.daily = []repository.DailyTotal{
		{Day: day(2026, 3, 5), ItemType: "SHIPMENT", Amount: dec("10.00")},
		{Day: day(2026, 3, 20), ItemType: "SHIPMENT", Amount: dec("10.00")},
		{Day: day(2026, 4, 2), ItemType: "SHIPMENT", Amount: dec("7.00")},
	}

	svc := service.NewReportService(repo)
	resp, err := svc.Dashboard(context.Background(), dto.ReportFilter{GroupBy: "MONTHLY"})
	require.NoError(t, err)

	points := resp.ChartData.Points
	require.Len(t, points, 2)
	assert.Equal(t, "2026-03", points[0].Label)
	assert.Equal(t, "20.00", points[0].Shipments.StringFixed(2))
	assert.Equal(t, "2026-04", points[1].Label)
	assert.Equal(t, "7.00", points[1].Shipments.StringFixed(2))
}

func TestDashboardChartWeeklyLabels(t *testing.T) {
	repo := newStubShipmentRepo()
	// 2026-01-05 is a Monday, ISO week 2 of 2026.
	repo.daily = []repository.DailyTotal{
		{Day: day(2026, 1, 5), ItemType: "SHIPMENT", Amount: dec("10.00")},
		{Day: day(2026, 1, 8), ItemType: "SHIPMENT", Amount: dec("5.00")},
	}

	svc := service.NewReportService(repo)
	resp, err := svc.Dashboard(context.Background(), dto.ReportFilter{GroupBy: "WEEKLY"})
	require.NoError(t, err)

	points := resp.ChartData.Points
	require.Len(t, points, 1)
	assert.Equal(t, "2026-W02", points[0].Label)
	assert.Equal(t, "15.00", points[0].Shipments.StringFixed(2))
}

// ── Exports ───────────────────────────────────────────────────────────────────

func seedDeliveredShipment(repo *stubShipmentRepo) *model.Shipment {
	productID := uuid.New()
	s := &model.Shipment{
		ID:             uuid.New(),
		ShipmentNumber: "SHP-20260810-00042",
		ShopID:         uuid.New(),
		ShipmentDate:   day(2026, 8, 10),
		Status:         model.StatusConsegnata,
		Shop:           &model.Shop{Name: "Negozio Centro"},
		Driver:         &model.User{FullName: "Mario Autista"},
		Items: []model.ShipmentItem{
			{ProductID: productID, ItemType: model.ItemShipment, Quantity: dec("10"), UnitPrice: dec("2.00"), TotalPrice: dec("20.00")},
			{ProductID: productID, ItemType: model.ItemReturn, Quantity: dec("3"), UnitPrice: dec("2.00"), TotalPrice: dec("6.00")},
		},
	}
	repo.shipments[s.ID] = s
	return s
}

func TestShipmentsReportRows(t *testing.T) {
	repo := newStubShipmentRepo()
	seedDeliveredShipment(repo)

	svc := service.NewReportService(repo)
	rows, err := svc.ShipmentsReport(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "SHP-20260810-00042", rows[0].ShipmentNumber)
	assert.Equal(t, "Consegnata", rows[0].Status)
	assert.Equal(t, "20.00", rows[0].TotalShipmentValue)
	assert.Equal(t, "14.00", rows[0].NetValue)
}

func TestReturnsReport(t *testing.T) {
	repo := newStubShipmentRepo()
	repo.aggregates = dto.ShipmentAggregates{TotalReturnAmount: dec("6.00")}
	repo.returned = []dto.ProductAggregate{
		{ProductCode: "PANE-001", ProductName: "Pane Casereccio", Quantity: dec("3"), Total: dec("6.00")},
	}

	svc := service.NewReportService(repo)
	resp, err := svc.ReturnsReport(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, "6.00", resp.TotalReturnsValue.StringFixed(2))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "PANE-001", resp.Products[0].ProductCode)
}

func TestExportCSV(t *testing.T) {
	repo := newStubShipmentRepo()
	seedDeliveredShipment(repo)

	svc := service.NewReportService(repo)
	out, err := svc.ExportCSV(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Numero", "Data", "Negozio", "Autista", "Stato",
		"N° Prodotti", "Totale Prodotti", "N° Resi", "Totale Resi", "Netto",
	}, rows[0])
	assert.Equal(t, []string{
		"SHP-20260810-00042", "10/08/2026", "Negozio Centro", "Mario Autista",
		"Consegnata", "1", "20.00", "1", "6.00", "14.00",
	}, rows[1])
}

func TestExportCSVDetailSections(t *testing.T) {
	repo := newStubShipmentRepo()
	seedDeliveredShipment(repo)
	repo.sold = []dto.ProductAggregate{
		{ProductCode: "PANE-001", ProductName: "Pane Casereccio", Quantity: dec("10"), Total: dec("20.00")},
	}
	repo.returned = []dto.ProductAggregate{
		{ProductCode: "PANE-001", ProductName: "Pane Casereccio", Quantity: dec("3"), Total: dec("6.00")},
	}

	svc := service.NewReportService(repo)
	out, err := svc.ExportCSV(context.Background(), dto.ReportFilter{Details: true})
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	flat := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			flat = append(flat, row[0])
		}
	}
	assert.Contains(t, flat, "Prodotti Venduti")
	assert.Contains(t, flat, "Prodotti Resi")
}

func TestExportXLSX(t *testing.T) {
	repo := newStubShipmentRepo()
	seedDeliveredShipment(repo)

	svc := service.NewReportService(repo)
	out, err := svc.ExportXLSX(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("Spedizioni")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Numero", rows[0][0])
	assert.Equal(t, "SHP-20260810-00042", rows[1][0])
	assert.Equal(t, "14.00", rows[1][9])
}
