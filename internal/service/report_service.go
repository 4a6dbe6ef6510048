package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
)

type ReportService interface {
	Dashboard(ctx context.Context, f dto.ReportFilter) (*dto.ReportDashboardResponse, error)
	ShipmentsReport(ctx context.Context, f dto.ReportFilter) ([]dto.ShipmentReportRow, error)
	ReturnsReport(ctx context.Context, f dto.ReportFilter) (*dto.ReturnsReportResponse, error)
	ExportCSV(ctx context.Context, f dto.ReportFilter) ([]byte, error)
	ExportXLSX(ctx context.Context, f dto.ReportFilter) ([]byte, error)
}

type reportService struct {
	shipmentRepo repository.ShipmentRepository
}

func NewReportService(shipmentRepo repository.ShipmentRepository) ReportService {
	return &reportService{shipmentRepo: shipmentRepo}
}

// normalize fills the default reporting window (current month to date) and
// group mode. Reports only ever look at confirmed shipments; drafts are
// working documents, not business facts.
func (s *reportService) normalize(f dto.ReportFilter) (dto.ReportFilter, dto.ShipmentFilter) {
	now := time.Now()
	if f.StartDate == "" {
		f.StartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	if f.EndDate == "" {
		f.EndDate = now.Format("2006-01-02")
	}
	if f.GroupBy == "" {
		f.GroupBy = "DAILY"
	}
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = []string{string(model.StatusInConsegna), string(model.StatusConsegnata)}
	}
	sf := dto.ShipmentFilter{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		ShopID:    f.ShopID,
		DriverID:  f.DriverID,
		Statuses:  statuses,
	}
	return f, sf
}

func (s *reportService) Dashboard(ctx context.Context, f dto.ReportFilter) (*dto.ReportDashboardResponse, error) {
	f, sf := s.normalize(f)

	agg, err := s.shipmentRepo.Aggregates(ctx, sf)
	if err != nil {
		return nil, err
	}
	shipmentCount, err := s.shipmentRepo.Count(ctx, sf)
	if err != nil {
		return nil, err
	}
	deliveredFilter := sf
	deliveredFilter.Statuses = []string{string(model.StatusConsegnata)}
	deliveredCount, err := s.shipmentRepo.Count(ctx, deliveredFilter)
	if err != nil {
		return nil, err
	}

	sold, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemShipment)
	if err != nil {
		return nil, err
	}
	returned, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemReturn)
	if err != nil {
		return nil, err
	}

	daily, err := s.shipmentRepo.DailyTotals(ctx, sf)
	if err != nil {
		return nil, err
	}

	return &dto.ReportDashboardResponse{
		Summary: dto.SummaryTotals{
			ShipmentCount:      shipmentCount,
			DeliveredCount:     deliveredCount,
			TotalShipmentValue: agg.TotalShipmentAmount,
			TotalReturnsValue:  agg.TotalReturnAmount,
			NetValue:           agg.NetTotal,
		},
		ChartData:        bucketChart(daily, f.GroupBy),
		ProductsSold:     sold,
		ProductsReturned: returned,
	}, nil
}

// ShipmentsReport is the JSON twin of the CSV export: one row per shipment
// in the filtered window.
func (s *reportService) ShipmentsReport(ctx context.Context, f dto.ReportFilter) ([]dto.ShipmentReportRow, error) {
	_, sf := s.normalize(f)
	shipments, _, err := s.shipmentRepo.List(ctx, sf)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ShipmentReportRow, 0, len(shipments))
	for i := range shipments {
		rows = append(rows, reportRow(&shipments[i]))
	}
	return rows, nil
}

// ReturnsReport aggregates the RETURN lines of the filtered window by
// product.
func (s *reportService) ReturnsReport(ctx context.Context, f dto.ReportFilter) (*dto.ReturnsReportResponse, error) {
	_, sf := s.normalize(f)
	agg, err := s.shipmentRepo.Aggregates(ctx, sf)
	if err != nil {
		return nil, err
	}
	returned, err := s.shipmentRepo.ProductAggregates(ctx, sf, model.ItemReturn)
	if err != nil {
		return nil, err
	}
	return &dto.ReturnsReportResponse{
		TotalReturnsValue: agg.TotalReturnAmount,
		Products:          returned,
	}, nil
}

// bucketChart folds per-day totals into the chart buckets. Day rows arrive
// sorted ascending, so first-seen label order is chronological.
func bucketChart(rows []repository.DailyTotal, groupBy string) dto.ChartData {
	type bucket struct{ idx int }
	points := make([]dto.ChartPoint, 0)
	seen := make(map[string]bucket)

	for _, row := range rows {
		label := chartLabel(row.Day, groupBy)
		b, ok := seen[label]
		if !ok {
			points = append(points, dto.ChartPoint{Label: label})
			b = bucket{idx: len(points) - 1}
			seen[label] = b
		}
		p := &points[b.idx]
		switch model.ItemType(row.ItemType) {
		case model.ItemReturn:
			p.Returns = p.Returns.Add(row.Amount)
		default:
			p.Shipments = p.Shipments.Add(row.Amount)
		}
	}
	for i := range points {
		points[i].Net = NetTotal(points[i].Shipments, points[i].Returns)
	}
	return dto.ChartData{GroupBy: groupBy, Points: points}
}

// chartLabel buckets a date per group mode: ISO weeks (Monday start) for
// WEEKLY, calendar months for MONTHLY, the day itself otherwise.
func chartLabel(day time.Time, groupBy string) string {
	switch groupBy {
	case "WEEKLY":
		year, week := day.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case "MONTHLY":
		return day.Format("2006-01")
	default:
		return day.Format("2006-01-02")
	}
}
