package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
)

var (
	ErrProductNotFound  = errors.New("Prodotto non trovato")
	ErrProductCodeTaken = errors.New("Codice prodotto già in uso")
)

const productCacheKey = "cache:products:active"

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if existing, err := s.repo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ErrProductCodeTaken
	}

	product := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Category:    model.ProductCategory(req.Category),
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
		Notes:       req.Notes,
		Active:      true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return productToResponse(product), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return productToResponse(product), nil
}

// List caches the active catalog in Redis; it backs the item picker of
// every shipment form.
func (s *productService) List(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error) {
	if !includeInactive && s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, productCacheKey).Bytes(); err == nil {
			var out []dto.ProductResponse
			if json.Unmarshal(cached, &out) == nil {
				return out, nil
			}
		}
	}

	products, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}

	if !includeInactive && s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, productCacheKey, data, refCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("product cache set failed")
			}
		}
	}
	return out, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = model.ProductCategory(*req.Category)
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Notes != nil {
		product.Notes = req.Notes
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return productToResponse(product), nil
}

// Delete deactivates the product. Historical shipment lines keep their
// snapshot prices either way.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductNotFound
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *productService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productCacheKey).Err(); err != nil {
		log.Debug().Err(err).Msg("product cache invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		UnitPrice:   p.UnitPrice,
		Unit:        p.Unit,
		Notes:       p.Notes,
		Active:      p.Active,
	}
}
