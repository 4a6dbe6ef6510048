package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"
	"github.com/jdirocco/forno/internal/worker"
)

// Sentinel errors let handlers choose the right HTTP status without
// string-matching.
var (
	ErrShipmentNotFound     = errors.New("Spedizione non trovata")
	ErrNotDraft             = errors.New("Solo le bozze possono essere modificate")
	ErrDraftOnlyDelete      = errors.New("Solo le bozze possono essere eliminate")
	ErrInvalidTransition    = errors.New("Transizione di stato non valida")
	ErrNotDelivered         = errors.New("I resi possono essere registrati solo su spedizioni confermate")
	ErrNoReturnItems        = errors.New("Seleziona almeno un prodotto")
	ErrReturnExceedsShipped = errors.New("La quantità resa non può superare la quantità consegnata")
	ErrPDFNotAvailable      = errors.New("PDF non disponibile. Conferma prima la spedizione.")
	ErrNoShopEmail          = errors.New("Il negozio non ha un indirizzo email")
	ErrNoShopWhatsApp       = errors.New("Il negozio non ha un numero WhatsApp")
)

type ShipmentService interface {
	Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateShipmentRequest) (*dto.ShipmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShipmentResponse, error)
	List(ctx context.Context, f dto.ShipmentFilter) (*dto.ShipmentPageResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateShipmentRequest) (*dto.ShipmentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, target model.ShipmentStatus) (*dto.ShipmentResponse, error)
	AttachReturns(ctx context.Context, id uuid.UUID, req dto.AttachReturnsRequest) (*dto.ShipmentResponse, error)
	LastForShop(ctx context.Context, shopID uuid.UUID) (*dto.ShipmentResponse, error)
	TodayForDriver(ctx context.Context, driverID uuid.UUID) ([]dto.ShipmentResponse, error)
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
	SendEmail(ctx context.Context, id uuid.UUID) error
	SendWhatsApp(ctx context.Context, id uuid.UUID) error
}

type shipmentService struct {
	repo        repository.ShipmentRepository
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	dispatcher  *worker.Dispatcher
	companyName string
	pdfPath     string
	baseURL     string
}

func NewShipmentService(
	repo repository.ShipmentRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	dispatcher *worker.Dispatcher,
	companyName, pdfPath, baseURL string,
) ShipmentService {
	return &shipmentService{
		repo:        repo,
		shopRepo:    shopRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		companyName: companyName,
		pdfPath:     pdfPath,
		baseURL:     baseURL,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *shipmentService) Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	shopID, err := uuid.Parse(req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("shopId non valido: %w", err)
	}
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, errors.New("Negozio non trovato")
	}
	if !shop.Active {
		return nil, fmt.Errorf("Il negozio %s non è attivo", shop.Name)
	}

	driverID, err := s.resolveDriver(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	shipmentDate, _ := time.Parse("2006-01-02", req.ShipmentDate)

	items, err := s.resolveItems(ctx, req.Items, model.ItemShipment)
	if err != nil {
		return nil, err
	}

	shipment := model.Shipment{
		ShopID:       shopID,
		DriverID:     driverID,
		ShipmentDate: shipmentDate,
		Status:       model.StatusBozza,
		Notes:        req.Notes,
		CreatedByID:  &createdBy,
		Items:        items,
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, &shipment)
	}); err != nil {
		return nil, err
	}

	return s.Get(ctx, shipment.ID)
}

// resolveDriver validates an optional driver id: must exist, be active and
// hold the DRIVER role.
func (s *shipmentService) resolveDriver(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("driverId non valido: %w", err)
	}
	driver, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("Autista non trovato")
	}
	if driver.Role != model.RoleDriver || !driver.Active {
		return nil, fmt.Errorf("L'utente %s non è un autista attivo", driver.FullName)
	}
	return &id, nil
}

// resolveItems turns the request lines into priced model items. Prices are
// always taken from the product catalog at resolution time, never from the
// client. Zero or negative quantities are rejected.
func (s *shipmentService) resolveItems(ctx context.Context, reqItems []dto.ShipmentItemRequest, itemType model.ItemType) ([]model.ShipmentItem, error) {
	ids := make([]uuid.UUID, 0, len(reqItems))
	for _, item := range reqItems {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("productId non valido: %w", err)
		}
		ids = append(ids, pid)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]model.ShipmentItem, 0, len(reqItems))
	for i, reqItem := range reqItems {
		p, ok := byID[ids[i]]
		if !ok {
			return nil, fmt.Errorf("Prodotto %s non trovato", reqItem.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("Il prodotto %s non è attivo", p.Name)
		}
		if reqItem.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("Quantità non valida per %s", p.Name)
		}
		item := model.ShipmentItem{
			ProductID:  p.ID,
			Quantity:   reqItem.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: reqItem.Quantity.Mul(p.UnitPrice).Round(2),
			ItemType:   itemType,
			Notes:      reqItem.Notes,
		}
		if itemType == model.ItemReturn && reqItem.ReturnReason != nil {
			reason := model.ReturnReason(*reqItem.ReturnReason)
			item.ReturnReason = &reason
		}
		items = append(items, item)
	}
	return items, nil
}

// ── Read ──────────────────────────────────────────────────────────────────────

func (s *shipmentService) Get(ctx context.Context, id uuid.UUID) (*dto.ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	return shipmentToResponse(shipment), nil
}

// List always computes the aggregate block over the FULL filtered set; the
// handler decides whether to serve the envelope or the flat content array.
func (s *shipmentService) List(ctx context.Context, f dto.ShipmentFilter) (*dto.ShipmentPageResponse, error) {
	shipments, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	agg, err := s.repo.Aggregates(ctx, f)
	if err != nil {
		return nil, err
	}

	content := make([]dto.ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		content = append(content, *shipmentToResponse(&shipments[i]))
	}

	page, size := 0, len(content)
	if f.Paginated() {
		page, size = *f.Page, *f.Size
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &dto.ShipmentPageResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
		PageWindow:    PageWindow(page, totalPages),
		Aggregates:    agg,
	}, nil
}

// ── Update / Delete ───────────────────────────────────────────────────────────

func (s *shipmentService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateShipmentRequest) (*dto.ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	if shipment.Status != model.StatusBozza {
		return nil, ErrNotDraft
	}

	if req.ShopID != nil {
		shopID, err := uuid.Parse(*req.ShopID)
		if err != nil {
			return nil, fmt.Errorf("shopId non valido: %w", err)
		}
		if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
			return nil, errors.New("Negozio non trovato")
		}
		shipment.ShopID = shopID
	}
	if req.DriverID != nil {
		driverID, err := s.resolveDriver(ctx, req.DriverID)
		if err != nil {
			return nil, err
		}
		shipment.DriverID = driverID
	}
	if req.ShipmentDate != nil {
		shipment.ShipmentDate, _ = time.Parse("2006-01-02", *req.ShipmentDate)
	}
	if req.Notes != nil {
		shipment.Notes = req.Notes
	}

	var newItems []model.ShipmentItem
	if req.Items != nil {
		newItems, err = s.resolveItems(ctx, req.Items, model.ItemShipment)
		if err != nil {
			return nil, err
		}
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Relations are never saved here; only header columns change.
		shipment.Shop, shipment.Driver, shipment.CreatedBy, shipment.Items = nil, nil, nil, nil
		if err := s.repo.Save(ctx, tx, shipment); err != nil {
			return err
		}
		if newItems != nil {
			return s.repo.ReplaceItems(ctx, tx, id, model.ItemShipment, newItems)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *shipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrShipmentNotFound
	}
	if shipment.Status != model.StatusBozza {
		return ErrDraftOnlyDelete
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

// ── Status machine ────────────────────────────────────────────────────────────

// ChangeStatus advances a shipment by exactly one step. Confirming a draft
// (BOZZA → IN_CONSEGNA) also renders the DDT and fires the notifications.
func (s *shipmentService) ChangeStatus(ctx context.Context, id uuid.UUID, target model.ShipmentStatus) (*dto.ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	if !target.Valid() || shipment.Status.NextStatus() != target {
		return nil, ErrInvalidTransition
	}

	cols := map[string]any{"status": target}

	if target == model.StatusInConsegna {
		path, err := infraGenerateDDT(shipment, s.companyName, s.pdfPath)
		if err != nil {
			return nil, fmt.Errorf("generazione DDT fallita: %w", err)
		}
		cols["pdf_path"] = path
		shipment.PDFPath = &path
	}

	if err := s.repo.UpdateColumns(ctx, id, cols); err != nil {
		return nil, err
	}
	shipment.Status = target

	if target == model.StatusInConsegna {
		s.notify(ctx, shipment)
	}

	return s.Get(ctx, id)
}

// notify enqueues both channels, best-effort. A full queue or a down Redis
// never fails the confirm; the retry cron picks the shipment up later.
func (s *shipmentService) notify(ctx context.Context, shipment *model.Shipment) {
	if s.dispatcher == nil {
		return
	}
	if job := worker.EmailJobFor(shipment, s.companyName, s.baseURL); job != nil {
		if err := s.dispatcher.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Str("shipment", shipment.ShipmentNumber).Msg("enqueue email failed")
		}
	}
	if job := worker.WhatsAppJobFor(shipment, s.baseURL); job != nil {
		if err := s.dispatcher.EnqueueWhatsApp(ctx, job); err != nil {
			log.Warn().Err(err).Str("shipment", shipment.ShipmentNumber).Msg("enqueue whatsapp failed")
		}
	}
}

// ── Returns reconciliation ────────────────────────────────────────────────────

// AttachReturns replaces the RETURN lines of a confirmed shipment with the
// posted batch. Zero-quantity lines are dropped first; a batch that is all
// zeros is rejected. Per product, the returned quantity may never exceed
// the shipped quantity.
func (s *shipmentService) AttachReturns(ctx context.Context, id uuid.UUID, req dto.AttachReturnsRequest) (*dto.ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	if shipment.Status == model.StatusBozza {
		return nil, ErrNotDelivered
	}

	nonZero := make([]dto.ShipmentItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity.GreaterThan(decimal.Zero) {
			nonZero = append(nonZero, item)
		}
	}
	if len(nonZero) == 0 {
		return nil, ErrNoReturnItems
	}

	items, err := s.resolveItems(ctx, nonZero, model.ItemReturn)
	if err != nil {
		return nil, err
	}

	// Shipped quantity per product, then the batch total per product must
	// fit inside it. Returned lines inherit the shipped unit price so the
	// reconciliation nets out at the delivery price, not the current one.
	shippedQty := make(map[uuid.UUID]decimal.Decimal)
	shippedPrice := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range shipment.Items {
		if item.ItemType == model.ItemShipment {
			shippedQty[item.ProductID] = shippedQty[item.ProductID].Add(item.Quantity)
			shippedPrice[item.ProductID] = item.UnitPrice
		}
	}
	returnedQty := make(map[uuid.UUID]decimal.Decimal)
	for i := range items {
		pid := items[i].ProductID
		returnedQty[pid] = returnedQty[pid].Add(items[i].Quantity)
		if returnedQty[pid].GreaterThan(shippedQty[pid]) {
			return nil, ErrReturnExceedsShipped
		}
		if price, ok := shippedPrice[pid]; ok {
			items[i].UnitPrice = price
			items[i].TotalPrice = items[i].Quantity.Mul(price).Round(2)
		}
	}

	returnDate := time.Now()
	if req.ReturnDate != nil {
		returnDate, _ = time.Parse("2006-01-02", *req.ReturnDate)
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItems(ctx, tx, id, model.ItemReturn, items); err != nil {
			return err
		}
		shipment.Shop, shipment.Driver, shipment.CreatedBy, shipment.Items = nil, nil, nil, nil
		shipment.ReturnDate = &returnDate
		shipment.ReturnNotes = req.ReturnNotes
		return s.repo.Save(ctx, tx, shipment)
	}); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// ── Convenience lookups ───────────────────────────────────────────────────────

// LastForShop returns the most recent confirmed shipment inside a one-month
// window ending yesterday; the SHOP frontend prefills new orders from it.
func (s *shipmentService) LastForShop(ctx context.Context, shopID uuid.UUID) (*dto.ShipmentResponse, error) {
	to := time.Now().AddDate(0, 0, -1)
	from := to.AddDate(0, -1, 0)
	shipment, err := s.repo.LastForShop(ctx, shopID, from, to)
	if err != nil {
		return nil, ErrShipmentNotFound
	}
	return shipmentToResponse(shipment), nil
}

func (s *shipmentService) TodayForDriver(ctx context.Context, driverID uuid.UUID) ([]dto.ShipmentResponse, error) {
	shipments, err := s.repo.ListForDriverOnDate(ctx, driverID, time.Now())
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		out = append(out, *shipmentToResponse(&shipments[i]))
	}
	return out, nil
}

// PDFPath returns the DDT file location, regenerating the file when it was
// cleaned off disk. Drafts have no DDT.
func (s *shipmentService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrShipmentNotFound
	}
	if shipment.Status == model.StatusBozza {
		return "", ErrPDFNotAvailable
	}
	if shipment.PDFPath != nil {
		if _, err := os.Stat(*shipment.PDFPath); err == nil {
			return *shipment.PDFPath, nil
		}
	}
	path, err := infraGenerateDDT(shipment, s.companyName, s.pdfPath)
	if err != nil {
		return "", fmt.Errorf("generazione DDT fallita: %w", err)
	}
	if err := s.repo.UpdateColumns(ctx, id, map[string]any{"pdf_path": path}); err != nil {
		return "", err
	}
	return path, nil
}

// ── Manual notification resends ───────────────────────────────────────────────

func (s *shipmentService) SendEmail(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrShipmentNotFound
	}
	if shipment.Status == model.StatusBozza || shipment.PDFPath == nil {
		return ErrPDFNotAvailable
	}
	job := worker.EmailJobFor(shipment, s.companyName, s.baseURL)
	if job == nil {
		return ErrNoShopEmail
	}
	return s.dispatcher.EnqueueEmail(ctx, job)
}

func (s *shipmentService) SendWhatsApp(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrShipmentNotFound
	}
	if shipment.Status == model.StatusBozza || shipment.PDFPath == nil {
		return ErrPDFNotAvailable
	}
	job := worker.WhatsAppJobFor(shipment, s.baseURL)
	if job == nil {
		return ErrNoShopWhatsApp
	}
	return s.dispatcher.EnqueueWhatsApp(ctx, job)
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func shipmentItemToResponse(item *model.ShipmentItem) dto.ShipmentItemResponse {
	resp := dto.ShipmentItemResponse{
		ID:         item.ID.String(),
		ProductID:  item.ProductID.String(),
		Quantity:   item.Quantity,
		UnitPrice:  item.UnitPrice,
		TotalPrice: item.TotalPrice,
		ItemType:   string(item.ItemType),
		Notes:      item.Notes,
	}
	if item.Product != nil {
		resp.ProductCode = item.Product.Code
		resp.ProductName = item.Product.Name
		resp.Unit = item.Product.Unit
	}
	if item.ReturnReason != nil {
		reason := string(*item.ReturnReason)
		resp.ReturnReason = &reason
	}
	return resp
}

func shipmentToResponse(s *model.Shipment) *dto.ShipmentResponse {
	items := make([]dto.ShipmentItemResponse, 0, len(s.Items))
	for i := range s.Items {
		items = append(items, shipmentItemToResponse(&s.Items[i]))
	}

	resp := &dto.ShipmentResponse{
		ID:             s.ID.String(),
		ShipmentNumber: s.ShipmentNumber,
		ShipmentDate:   s.ShipmentDate.Format("2006-01-02"),
		Status:         string(s.Status),
		Notes:          s.Notes,
		PDFPath:        s.PDFPath,
		ReturnNotes:    s.ReturnNotes,
		EmailSent:      s.EmailSent,
		WhatsappSent:   s.WhatsappSent,
		Items:          items,
		Totals:         CalculateShipmentTotals(s.Items),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
	if s.ReturnDate != nil {
		d := s.ReturnDate.Format("2006-01-02")
		resp.ReturnDate = &d
	}
	if s.Shop != nil {
		resp.Shop = shopToResponse(s.Shop)
	}
	if s.Driver != nil {
		resp.Driver = userToResponse(s.Driver)
	}
	return resp
}

// infraGenerateDDT is swappable in unit tests, where no real PDF is wanted.
var infraGenerateDDT = infra.GenerateDDT
