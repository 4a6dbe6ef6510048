package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
)

// DailyTotal is one (day, itemType) bucket used by the reports chart.
type DailyTotal struct {
	Day      time.Time       `gorm:"column:day"`
	ItemType string          `gorm:"column:item_type"`
	Amount   decimal.Decimal `gorm:"column:amount"`
}

type ShipmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Shipment) error
	Save(ctx context.Context, tx *gorm.DB, s *model.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, itemType model.ItemType, items []model.ShipmentItem) error
	List(ctx context.Context, f dto.ShipmentFilter) ([]model.Shipment, int64, error)
	Count(ctx context.Context, f dto.ShipmentFilter) (int64, error)
	Aggregates(ctx context.Context, f dto.ShipmentFilter) (dto.ShipmentAggregates, error)
	ProductAggregates(ctx context.Context, f dto.ShipmentFilter, itemType model.ItemType) ([]dto.ProductAggregate, error)
	DailyTotals(ctx context.Context, f dto.ShipmentFilter) ([]DailyTotal, error)
	LastForShop(ctx context.Context, shopID uuid.UUID, from, to time.Time) (*model.Shipment, error)
	ListForDriverOnDate(ctx context.Context, driverID uuid.UUID, day time.Time) ([]model.Shipment, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error
	MarkEmailSent(ctx context.Context, id uuid.UUID) error
	MarkWhatsAppSent(ctx context.Context, id uuid.UUID) error
	ListUnnotified(ctx context.Context, limit int) ([]model.Shipment, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepository(db *gorm.DB) ShipmentRepository { return &shipmentRepo{db: db} }

func (r *shipmentRepo) DB() *gorm.DB { return r.db }

func (r *shipmentRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Shipment) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *shipmentRepo) Save(ctx context.Context, tx *gorm.DB, s *model.Shipment) error {
	return tx.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: false}).Save(s).Error
}

func (r *shipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).
		Preload("Shop").Preload("Driver").Preload("Items.Product").
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *shipmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	// Items go with it via ON DELETE CASCADE.
	return tx.WithContext(ctx).Delete(&model.Shipment{}, "id = ?", id).Error
}

// ReplaceItems swaps out the lines of one type, leaving the other type
// untouched. Editing a draft rewrites its SHIPMENT lines while any RETURN
// lines already attached stay as they are.
func (r *shipmentRepo) ReplaceItems(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, itemType model.ItemType, items []model.ShipmentItem) error {
	if err := tx.WithContext(ctx).
		Where("shipment_id = ? AND item_type = ?", shipmentID, itemType).
		Delete(&model.ShipmentItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ShipmentID = shipmentID
		items[i].ItemType = itemType
	}
	return tx.WithContext(ctx).Create(&items).Error
}

// filtered applies the list filter to a shipments query. Dates are
// inclusive on both ends against shipment_date.
func (r *shipmentRepo) filtered(q *gorm.DB, f dto.ShipmentFilter) *gorm.DB {
	if f.StartDate != "" {
		q = q.Where("shipment_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("shipment_date <= ?", f.EndDate)
	}
	if f.ShopID != "" {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.DriverID != "" {
		q = q.Where("driver_id = ?", f.DriverID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	return q
}

func (r *shipmentRepo) List(ctx context.Context, f dto.ShipmentFilter) ([]model.Shipment, int64, error) {
	var shipments []model.Shipment
	var total int64

	q := r.filtered(r.db.WithContext(ctx).Model(&model.Shipment{}), f)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Shop").Preload("Driver").Preload("Items.Product").
		Order("shipment_date DESC, shipment_number DESC")
	if f.Paginated() {
		q = q.Offset(*f.Page * *f.Size).Limit(*f.Size)
	}
	err := q.Find(&shipments).Error
	return shipments, total, err
}

func (r *shipmentRepo) Count(ctx context.Context, f dto.ShipmentFilter) (int64, error) {
	var total int64
	err := r.filtered(r.db.WithContext(ctx).Model(&model.Shipment{}), f).Count(&total).Error
	return total, err
}

func (r *shipmentRepo) matchingIDs(ctx context.Context, f dto.ShipmentFilter) *gorm.DB {
	return r.filtered(r.db.WithContext(ctx).Model(&model.Shipment{}), f).Select("id")
}

// Aggregates sums over the FULL filtered set, not the current page.
func (r *shipmentRepo) Aggregates(ctx context.Context, f dto.ShipmentFilter) (dto.ShipmentAggregates, error) {
	type row struct {
		ItemType string          `gorm:"column:item_type"`
		Amount   decimal.Decimal `gorm:"column:amount"`
		Items    int             `gorm:"column:items"`
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.ShipmentItem{}).
		Select("item_type, COALESCE(SUM(total_price), 0) AS amount, COUNT(*) AS items").
		Where("shipment_id IN (?)", r.matchingIDs(ctx, f)).
		Group("item_type").
		Scan(&rows).Error
	if err != nil {
		return dto.ShipmentAggregates{}, err
	}

	agg := dto.ShipmentAggregates{
		TotalShipmentAmount: decimal.Zero,
		TotalReturnAmount:   decimal.Zero,
	}
	for _, rw := range rows {
		switch model.ItemType(rw.ItemType) {
		case model.ItemShipment:
			agg.TotalShipmentAmount = rw.Amount
			agg.TotalShipmentItems = rw.Items
		case model.ItemReturn:
			agg.TotalReturnAmount = rw.Amount
			agg.TotalReturnItems = rw.Items
		}
	}
	agg.NetTotal = agg.TotalShipmentAmount.Sub(agg.TotalReturnAmount)
	return agg, nil
}

func (r *shipmentRepo) ProductAggregates(ctx context.Context, f dto.ShipmentFilter, itemType model.ItemType) ([]dto.ProductAggregate, error) {
	var rows []dto.ProductAggregate
	err := r.db.WithContext(ctx).
		Table("shipment_items AS si").
		Joins("JOIN products AS p ON p.id = si.product_id").
		Select("si.product_id, p.code AS product_code, p.name AS product_name, COALESCE(SUM(si.quantity), 0) AS quantity, COALESCE(SUM(si.total_price), 0) AS total").
		Where("si.item_type = ?", itemType).
		Where("si.shipment_id IN (?)", r.matchingIDs(ctx, f)).
		Group("si.product_id, p.code, p.name").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *shipmentRepo) DailyTotals(ctx context.Context, f dto.ShipmentFilter) ([]DailyTotal, error) {
	var rows []DailyTotal
	err := r.db.WithContext(ctx).
		Table("shipment_items AS si").
		Joins("JOIN shipments AS s ON s.id = si.shipment_id").
		Select("s.shipment_date AS day, si.item_type, COALESCE(SUM(si.total_price), 0) AS amount").
		Where("si.shipment_id IN (?)", r.matchingIDs(ctx, f)).
		Group("s.shipment_date, si.item_type").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

// LastForShop returns the most recent non-draft shipment for a shop inside
// the given window, items preloaded.
func (r *shipmentRepo) LastForShop(ctx context.Context, shopID uuid.UUID, from, to time.Time) (*model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).
		Preload("Shop").Preload("Driver").Preload("Items.Product").
		Where("shop_id = ? AND status <> ? AND shipment_date BETWEEN ? AND ?",
			shopID, model.StatusBozza, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("shipment_date DESC, created_at DESC").
		First(&s).Error
	return &s, err
}

func (r *shipmentRepo) ListForDriverOnDate(ctx context.Context, driverID uuid.UUID, day time.Time) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.WithContext(ctx).
		Preload("Shop").Preload("Driver").Preload("Items.Product").
		Where("driver_id = ? AND shipment_date = ? AND status <> ?",
			driverID, day.Format("2006-01-02"), model.StatusBozza).
		Order("shipment_number ASC").
		Find(&shipments).Error
	return shipments, err
}

func (r *shipmentRepo) UpdateColumns(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Shipment{}).Where("id = ?", id).Updates(cols).Error
}

func (r *shipmentRepo) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	return r.UpdateColumns(ctx, id, map[string]any{
		"email_sent":    true,
		"email_sent_at": time.Now(),
	})
}

func (r *shipmentRepo) MarkWhatsAppSent(ctx context.Context, id uuid.UUID) error {
	return r.UpdateColumns(ctx, id, map[string]any{
		"whatsapp_sent":    true,
		"whatsapp_sent_at": time.Now(),
	})
}

// ListUnnotified finds confirmed shipments whose DDT exists but where at
// least one notification channel has not gone out yet. Feeds the retry cron.
func (r *shipmentRepo) ListUnnotified(ctx context.Context, limit int) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.WithContext(ctx).
		Preload("Shop").Preload("Driver").Preload("Items.Product").
		Where("status <> ? AND pdf_path IS NOT NULL AND (email_sent = false OR whatsapp_sent = false)",
			model.StatusBozza).
		Order("updated_at ASC").
		Limit(limit).
		Find(&shipments).Error
	return shipments, err
}
