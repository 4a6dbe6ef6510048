package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
)

var (
	ErrShopNotFound  = errors.New("Negozio non trovato")
	ErrShopCodeTaken = errors.New("Codice negozio già in uso")
)

const (
	shopCacheKey = "cache:shops:active"
	refCacheTTL  = 5 * time.Minute
)

type ShopService interface {
	Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShopResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ShopResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateShopRequest) (*dto.ShopResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type shopService struct {
	repo repository.ShopRepository
	rdb  *redis.Client
}

func NewShopService(repo repository.ShopRepository, rdb *redis.Client) ShopService {
	return &shopService{repo: repo, rdb: rdb}
}

func (s *shopService) Create(ctx context.Context, req dto.CreateShopRequest) (*dto.ShopResponse, error) {
	if existing, err := s.repo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ErrShopCodeTaken
	}

	shop := &model.Shop{
		Code:           req.Code,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		Province:       req.Province,
		ZipCode:        req.ZipCode,
		Phone:          req.Phone,
		Email:          req.Email,
		WhatsappNumber: req.WhatsappNumber,
		ContactPerson:  req.ContactPerson,
		Notes:          req.Notes,
		Active:         true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return shopToResponse(shop), nil
}

func (s *shopService) Get(ctx context.Context, id uuid.UUID) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShopNotFound
	}
	return shopToResponse(shop), nil
}

// List serves the active-only variant from Redis when possible; the shop
// dropdown is hit on every shipment form load.
func (s *shopService) List(ctx context.Context, includeInactive bool) ([]dto.ShopResponse, error) {
	if !includeInactive && s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, shopCacheKey).Bytes(); err == nil {
			var out []dto.ShopResponse
			if json.Unmarshal(cached, &out) == nil {
				return out, nil
			}
		}
	}

	shops, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShopResponse, 0, len(shops))
	for i := range shops {
		out = append(out, *shopToResponse(&shops[i]))
	}

	if !includeInactive && s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, shopCacheKey, data, refCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("shop cache set failed")
			}
		}
	}
	return out, nil
}

func (s *shopService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateShopRequest) (*dto.ShopResponse, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShopNotFound
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.City != nil {
		shop.City = *req.City
	}
	if req.Province != nil {
		shop.Province = req.Province
	}
	if req.ZipCode != nil {
		shop.ZipCode = req.ZipCode
	}
	if req.Phone != nil {
		shop.Phone = req.Phone
	}
	if req.Email != nil {
		shop.Email = req.Email
	}
	if req.WhatsappNumber != nil {
		shop.WhatsappNumber = req.WhatsappNumber
	}
	if req.ContactPerson != nil {
		shop.ContactPerson = req.ContactPerson
	}
	if req.Notes != nil {
		shop.Notes = req.Notes
	}
	if req.Active != nil {
		shop.Active = *req.Active
	}

	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return shopToResponse(shop), nil
}

// Delete deactivates the shop. Shops referenced by shipments are never
// removed, only hidden, so history keeps resolving.
func (s *shopService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrShopNotFound
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *shopService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, shopCacheKey).Err(); err != nil {
		log.Debug().Err(err).Msg("shop cache invalidation failed")
	}
}

func shopToResponse(shop *model.Shop) *dto.ShopResponse {
	return &dto.ShopResponse{
		ID:             shop.ID.String(),
		Code:           shop.Code,
		Name:           shop.Name,
		Address:        shop.Address,
		City:           shop.City,
		Province:       shop.Province,
		ZipCode:        shop.ZipCode,
		Phone:          shop.Phone,
		Email:          shop.Email,
		WhatsappNumber: shop.WhatsappNumber,
		ContactPerson:  shop.ContactPerson,
		Notes:          shop.Notes,
		Active:         shop.Active,
	}
}
