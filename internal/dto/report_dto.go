package dto

import "github.com/shopspring/decimal"

// ReportFilter is bound from the query string of the reports endpoints.
// When dates are missing the service defaults to the current month so the
// dashboard always opens with data.
type ReportFilter struct {
	StartDate string   `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `form:"endDate"   validate:"omitempty,datetime=2006-01-02"`
	ShopID    string   `form:"shopId"    validate:"omitempty,uuid"`
	DriverID  string   `form:"driverId"  validate:"omitempty,uuid"`
	Statuses  []string `form:"statuses"  validate:"omitempty,dive,oneof=BOZZA IN_CONSEGNA CONSEGNATA"`
	GroupBy   string   `form:"chartGroupBy" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY"`
	// Details toggles the per-product sections of the CSV/XLSX export.
	Details bool `form:"details"`
}

// SummaryTotals mirrors the header widgets of the dashboard.
type SummaryTotals struct {
	ShipmentCount      int64           `json:"shipmentCount"`
	DeliveredCount     int64           `json:"deliveredCount"`
	TotalShipmentValue decimal.Decimal `json:"totalShipmentValue"`
	TotalReturnsValue  decimal.Decimal `json:"totalReturnsValue"`
	NetValue           decimal.Decimal `json:"netValue"`
}

// ProductAggregate is one row of the products-sold / products-returned
// tables, ordered by total value descending.
type ProductAggregate struct {
	ProductID   string          `json:"productId"`
	ProductCode string          `json:"productCode"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// ChartPoint is one bucket of the time-series chart. Label is yyyy-MM-dd
// for DAILY, yyyy-'W'ww for WEEKLY (weeks start Monday) and yyyy-MM for
// MONTHLY.
type ChartPoint struct {
	Label     string          `json:"label"`
	Shipments decimal.Decimal `json:"shipments"`
	Returns   decimal.Decimal `json:"returns"`
	Net       decimal.Decimal `json:"net"`
}

type ChartData struct {
	GroupBy string       `json:"groupBy"`
	Points  []ChartPoint `json:"points"`
}

// ShipmentReportRow is one line of the tabular shipments report, the JSON
// twin of the CSV/XLSX export row. Money figures are pre-formatted to two
// decimals.
type ShipmentReportRow struct {
	ID                 string `json:"id"`
	ShipmentNumber     string `json:"shipmentNumber"`
	ShipmentDate       string `json:"shipmentDate"`
	ShopName           string `json:"shopName"`
	DriverName         string `json:"driverName"`
	Status             string `json:"status"`
	ProductCount       int    `json:"productCount"`
	TotalShipmentValue string `json:"totalShipmentValue"`
	ReturnCount        int    `json:"returnCount"`
	TotalReturnsValue  string `json:"totalReturnsValue"`
	NetValue           string `json:"netValue"`
}

// ReturnsReportResponse is the tabular returns report: the overall returned
// value plus the per-product breakdown.
type ReturnsReportResponse struct {
	TotalReturnsValue decimal.Decimal    `json:"totalReturnsValue"`
	Products          []ProductAggregate `json:"products"`
}

// ReportDashboardResponse is the single payload behind the reports page.
type ReportDashboardResponse struct {
	Summary          SummaryTotals      `json:"summary"`
	ChartData        ChartData          `json:"chartData"`
	ProductsSold     []ProductAggregate `json:"productsSold"`
	ProductsReturned []ProductAggregate `json:"productsReturned"`
}
