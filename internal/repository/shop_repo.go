package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jdirocco/forno/internal/model"
)

type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindByCode(ctx context.Context, code string) (*model.Shop, error)
	List(ctx context.Context, includeInactive bool) ([]model.Shop, error)
	Update(ctx context.Context, s *model.Shop) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HasShipments(ctx context.Context, id uuid.UUID) (bool, error)
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) Create(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var s model.Shop
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *shopRepo) FindByCode(ctx context.Context, code string) (*model.Shop, error) {
	var s model.Shop
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	return &s, err
}

func (r *shopRepo) List(ctx context.Context, includeInactive bool) ([]model.Shop, error) {
	var shops []model.Shop
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("name ASC").Find(&shops).Error
	return shops, err
}

func (r *shopRepo) Update(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *shopRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("active", false).Error
}

// HasShipments tells whether any shipment references the shop; shops with
// history are deactivated instead of deleted.
func (r *shopRepo) HasShipments(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Shipment{}).Where("shop_id = ?", id).Count(&n).Error
	return n > 0, err
}
