package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jdirocco/forno/internal/model"
)

type ReturnFilter struct {
	StartDate  string
	EndDate    string
	ShopID     string
	ShipmentID string
	Status     string
}

type ReturnRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ret *model.Return) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error)
	List(ctx context.Context, f ReturnFilter) ([]model.Return, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, cols map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) DB() *gorm.DB { return r.db }

func (r *returnRepo) Create(ctx context.Context, tx *gorm.DB, ret *model.Return) error {
	return tx.WithContext(ctx).Create(ret).Error
}

func (r *returnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error) {
	var ret model.Return
	err := r.db.WithContext(ctx).
		Preload("Shop").Preload("Items.Product").
		First(&ret, "id = ?", id).Error
	return &ret, err
}

func (r *returnRepo) List(ctx context.Context, f ReturnFilter) ([]model.Return, error) {
	var returns []model.Return
	q := r.db.WithContext(ctx).Model(&model.Return{})
	if f.StartDate != "" {
		q = q.Where("return_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("return_date <= ?", f.EndDate)
	}
	if f.ShopID != "" {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.ShipmentID != "" {
		q = q.Where("shipment_id = ?", f.ShipmentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	err := q.Preload("Shop").Preload("Items.Product").
		Order("return_date DESC, return_number DESC").
		Find(&returns).Error
	return returns, err
}

func (r *returnRepo) UpdateStatus(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Return{}).Where("id = ?", id).Updates(cols).Error
}

func (r *returnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Return{}, "id = ?", id).Error
}
