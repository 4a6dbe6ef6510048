package service

import (
	"github.com/shopspring/decimal"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
)

// NetTotal is shipped minus returned. Callers pass totals in either order
// of accumulation; subtraction itself is exact decimal arithmetic.
func NetTotal(shipped, returned decimal.Decimal) decimal.Decimal {
	return shipped.Sub(returned)
}

// CalculateShipmentTotals folds the line items of one shipment into the
// three fixed-point figures shown on every row. An empty or nil slice
// yields "0.00" across the board.
func CalculateShipmentTotals(items []model.ShipmentItem) dto.ShipmentTotals {
	shipped := decimal.Zero
	returned := decimal.Zero
	for _, item := range items {
		switch item.ItemType {
		case model.ItemReturn:
			returned = returned.Add(item.TotalPrice)
		default:
			shipped = shipped.Add(item.TotalPrice)
		}
	}
	return dto.ShipmentTotals{
		TotalShipmentValue: shipped.StringFixed(2),
		TotalReturnsValue:  returned.StringFixed(2),
		NetValue:           NetTotal(shipped, returned).StringFixed(2),
	}
}

// PageWindow returns up to 5 one-based page labels centered on the
// zero-based current page, clamped to the valid range. A single page (or
// none) yields nil so the pager widget is hidden entirely.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 1 {
		return nil
	}
	span := 5
	if totalPages < span {
		span = totalPages
	}
	start := current - span/2
	if start < 0 {
		start = 0
	}
	if start+span > totalPages {
		start = totalPages - span
	}
	window := make([]int, span)
	for i := range window {
		window[i] = start + i + 1
	}
	return window
}
