package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
)

const driverCacheKey = "cache:users:drivers"

var (
	ErrUserNotFound  = errors.New("Utente non trovato")
	ErrShopRequired  = errors.New("Gli account di tipo SHOP devono essere associati a un negozio")
	ErrUsernameTaken = errors.New("Username già in uso")
)

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	ListDrivers(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo     repository.UserRepository
	shopRepo repository.ShopRepository
	rdb      *redis.Client
}

func NewUserService(repo repository.UserRepository, shopRepo repository.ShopRepository, rdb *redis.Client) UserService {
	return &userService{repo: repo, shopRepo: shopRepo, rdb: rdb}
}

// resolveShop enforces the SHOP-role ↔ shop link in both directions.
func (s *userService) resolveShop(ctx context.Context, role model.UserRole, rawShopID *string) (*uuid.UUID, error) {
	if role != model.RoleShop {
		return nil, nil
	}
	if rawShopID == nil || *rawShopID == "" {
		return nil, ErrShopRequired
	}
	shopID, err := uuid.Parse(*rawShopID)
	if err != nil {
		return nil, ErrShopRequired
	}
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		return nil, errors.New("Negozio non trovato")
	}
	return &shopID, nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	role := model.UserRole(req.Role)
	shopID, err := s.resolveShop(ctx, role, req.ShopID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       req.Username,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		WhatsappNumber: req.WhatsappNumber,
		PasswordHash:   string(hash),
		Role:           role,
		ShopID:         shopID,
		Active:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return s.Get(ctx, user.ID)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return userToResponse(user), nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return usersToResponse(users), nil
}

// ListDrivers caches the active-driver list in Redis; it backs the driver
// dropdown of every shipment form.
func (s *userService) ListDrivers(ctx context.Context) ([]dto.UserResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, driverCacheKey).Bytes(); err == nil {
			var out []dto.UserResponse
			if json.Unmarshal(cached, &out) == nil {
				return out, nil
			}
		}
	}

	users, err := s.repo.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	out := usersToResponse(users)

	if s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, driverCacheKey, data, refCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("driver cache set failed")
			}
		}
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Role != nil {
		user.Role = model.UserRole(*req.Role)
	}
	shopID, err := s.resolveShop(ctx, user.Role, pickShopID(req.ShopID, user.ShopID))
	if err != nil {
		return nil, err
	}
	user.ShopID = shopID

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.WhatsappNumber != nil {
		user.WhatsappNumber = req.WhatsappNumber
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.Shop = nil
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return s.Get(ctx, id)
}

func (s *userService) ToggleActive(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.repo.SetActive(ctx, id, !user.Active); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return s.Get(ctx, id)
}

// Delete deactivates the account instead of removing the row: shipments
// keep their createdBy/driver references intact.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrUserNotFound
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *userService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, driverCacheKey).Err(); err != nil {
		log.Debug().Err(err).Msg("driver cache invalidation failed")
	}
}

// pickShopID prefers the value from the request, falling back to the one
// already stored.
func pickShopID(fromReq *string, current *uuid.UUID) *string {
	if fromReq != nil {
		return fromReq
	}
	if current != nil {
		v := current.String()
		return &v
	}
	return nil
}

func userToResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		FullName:       u.FullName,
		Email:          u.Email,
		Phone:          u.Phone,
		WhatsappNumber: u.WhatsappNumber,
		Role:           string(u.Role),
		Active:         u.Active,
	}
	if u.ShopID != nil {
		shopID := u.ShopID.String()
		resp.ShopID = &shopID
	}
	if u.Shop != nil {
		resp.ShopName = &u.Shop.Name
	}
	return resp
}

func usersToResponse(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *userToResponse(&users[i]))
	}
	return out
}
