package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
)

var (
	ErrReturnNotFound      = errors.New("Reso non trovato")
	ErrReturnNotDeletable  = errors.New("Solo i resi in attesa, rifiutati o annullati possono essere eliminati")
	ErrReturnNotEditable   = errors.New("Solo i resi in attesa possono essere modificati")
	ErrReturnBadTransition = errors.New("Cambio di stato non consentito")
)

type ReturnService interface {
	Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateReturnRequest) (*dto.ReturnResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error)
	List(ctx context.Context, f repository.ReturnFilter) ([]dto.ReturnResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateReturnRequest) (*dto.ReturnResponse, error)
	UpdateStatus(ctx context.Context, id, actor uuid.UUID, status model.ReturnStatus) (*dto.ReturnResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type returnService struct {
	repo         repository.ReturnRepository
	shipmentRepo repository.ShipmentRepository
	productRepo  repository.ProductRepository
}

func NewReturnService(repo repository.ReturnRepository, shipmentRepo repository.ShipmentRepository, productRepo repository.ProductRepository) ReturnService {
	return &returnService{repo: repo, shipmentRepo: shipmentRepo, productRepo: productRepo}
}

func (s *returnService) Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	shipmentID, err := uuid.Parse(req.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("shipmentId non valido: %w", err)
	}
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	if shipment.Status == model.StatusBozza {
		return nil, ErrNotDelivered
	}

	shippedQty := make(map[uuid.UUID]decimal.Decimal)
	shippedPrice := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range shipment.Items {
		if item.ItemType == model.ItemShipment {
			shippedQty[item.ProductID] = shippedQty[item.ProductID].Add(item.Quantity)
			shippedPrice[item.ProductID] = item.UnitPrice
		}
	}

	returnDate, _ := time.Parse("2006-01-02", req.ReturnDate)
	ret := model.Return{
		ShipmentID:  shipmentID,
		ShopID:      shipment.ShopID,
		ReturnDate:  returnDate,
		Status:      model.ReturnPending,
		Reason:      req.Reason,
		Notes:       req.Notes,
		CreatedByID: &createdBy,
	}

	requested := make(map[uuid.UUID]decimal.Decimal)
	for _, reqItem := range req.Items {
		pid, err := uuid.Parse(reqItem.ProductID)
		if err != nil {
			return nil, fmt.Errorf("productId non valido: %w", err)
		}
		if reqItem.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		requested[pid] = requested[pid].Add(reqItem.Quantity)
		if requested[pid].GreaterThan(shippedQty[pid]) {
			return nil, ErrReturnExceedsShipped
		}

		price, ok := shippedPrice[pid]
		if !ok {
			p, err := s.productRepo.FindByID(ctx, pid)
			if err != nil {
				return nil, fmt.Errorf("Prodotto %s non trovato", reqItem.ProductID)
			}
			price = p.UnitPrice
		}

		item := model.ReturnItem{
			ProductID:   pid,
			Quantity:    reqItem.Quantity,
			UnitPrice:   price,
			TotalAmount: reqItem.Quantity.Mul(price).Round(2),
			Notes:       reqItem.Notes,
		}
		if reqItem.ShipmentItemID != nil {
			if sid, err := uuid.Parse(*reqItem.ShipmentItemID); err == nil {
				item.ShipmentItemID = &sid
			}
		}
		if reqItem.Reason != nil {
			reason := model.ReturnReason(*reqItem.Reason)
			item.Reason = &reason
		}
		ret.Items = append(ret.Items, item)
	}
	if len(ret.Items) == 0 {
		return nil, ErrNoReturnItems
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, &ret)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, ret.ID)
}

func (s *returnService) Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrReturnNotFound
	}
	return returnToResponse(ret), nil
}

func (s *returnService) List(ctx context.Context, f repository.ReturnFilter) ([]dto.ReturnResponse, error) {
	returns, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(returns))
	for i := range returns {
		out = append(out, *returnToResponse(&returns[i]))
	}
	return out, nil
}

// Update edits the header of a PENDING return. Reviewed documents are
// immutable.
func (s *returnService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateReturnRequest) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrReturnNotFound
	}
	if ret.Status != model.ReturnPending {
		return nil, ErrReturnNotEditable
	}

	cols := map[string]any{}
	if req.ReturnDate != nil {
		d, err := time.Parse("2006-01-02", *req.ReturnDate)
		if err != nil {
			return nil, fmt.Errorf("returnDate non valida: %w", err)
		}
		cols["return_date"] = d
	}
	if req.Reason != nil {
		cols["reason"] = req.Reason
	}
	if req.Notes != nil {
		cols["notes"] = req.Notes
	}
	if len(cols) > 0 {
		if err := s.repo.UpdateStatus(ctx, id, cols); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves a return through its review workflow. Anything is
// reachable from PENDING; APPROVED may still be PROCESSED or CANCELLED;
// the remaining states are terminal.
func (s *returnService) UpdateStatus(ctx context.Context, id, actor uuid.UUID, status model.ReturnStatus) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrReturnNotFound
	}

	allowed := map[model.ReturnStatus][]model.ReturnStatus{
		model.ReturnPending:  {model.ReturnApproved, model.ReturnRejected, model.ReturnCancelled},
		model.ReturnApproved: {model.ReturnProcessed, model.ReturnCancelled},
	}
	ok := false
	for _, next := range allowed[ret.Status] {
		if next == status {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ErrReturnBadTransition
	}

	now := time.Now()
	cols := map[string]any{
		"status":          status,
		"processed_by_id": actor,
		"processed_at":    now,
	}
	if err := s.repo.UpdateStatus(ctx, id, cols); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *returnService) Delete(ctx context.Context, id uuid.UUID) error {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrReturnNotFound
	}
	switch ret.Status {
	case model.ReturnPending, model.ReturnRejected, model.ReturnCancelled:
		return s.repo.Delete(ctx, id)
	default:
		return ErrReturnNotDeletable
	}
}

func returnToResponse(ret *model.Return) *dto.ReturnResponse {
	total := decimal.Zero
	items := make([]dto.ReturnItemResponse, 0, len(ret.Items))
	for i := range ret.Items {
		item := &ret.Items[i]
		r := dto.ReturnItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalAmount: item.TotalAmount,
			Notes:       item.Notes,
		}
		if item.ShipmentItemID != nil {
			sid := item.ShipmentItemID.String()
			r.ShipmentItemID = &sid
		}
		if item.Product != nil {
			r.ProductCode = item.Product.Code
			r.ProductName = item.Product.Name
		}
		if item.Reason != nil {
			reason := string(*item.Reason)
			r.Reason = &reason
		}
		items = append(items, r)
		total = total.Add(item.TotalAmount)
	}

	resp := &dto.ReturnResponse{
		ID:           ret.ID.String(),
		ReturnNumber: ret.ReturnNumber,
		ShipmentID:   ret.ShipmentID.String(),
		ShopID:       ret.ShopID.String(),
		ReturnDate:   ret.ReturnDate.Format("2006-01-02"),
		Status:       string(ret.Status),
		Reason:       ret.Reason,
		Notes:        ret.Notes,
		TotalAmount:  total,
		Items:        items,
		CreatedAt:    ret.CreatedAt.Format(time.RFC3339),
	}
	if ret.Shop != nil {
		resp.ShopName = ret.Shop.Name
	}
	if ret.ProcessedByID != nil {
		pid := ret.ProcessedByID.String()
		resp.ProcessedByID = &pid
	}
	if ret.ProcessedAt != nil {
		at := ret.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &at
	}
	return resp
}
