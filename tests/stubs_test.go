package tests

import (
	"context"
	"errors"
	"time"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── In-memory Repository Stubs ────────────────────────────────────────────────

// stubShipmentRepo is an in-memory ShipmentRepository. The report methods
// return canned data set by each test.
type stubShipmentRepo struct {
	shipments map[uuid.UUID]*model.Shipment

	aggregates dto.ShipmentAggregates
	daily      []repository.DailyTotal
	sold       []dto.ProductAggregate
	returned   []dto.ProductAggregate
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{shipments: make(map[uuid.UUID]*model.Shipment)}
}

func (r *stubShipmentRepo) DB() *gorm.DB { return nil }

func cloneShipment(s *model.Shipment) *model.Shipment {
	c := *s
	c.Items = append([]model.ShipmentItem(nil), s.Items...)
	return &c
}

func (r *stubShipmentRepo) Create(_ context.Context, _ *gorm.DB, s *model.Shipment) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_ = s.BeforeCreate(nil)
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].ShipmentID = s.ID
	}
	r.shipments[s.ID] = cloneShipment(s)
	return nil
}

// Save only persists header fields, like the real repository does with
// associations disabled.
func (r *stubShipmentRepo) Save(_ context.Context, _ *gorm.DB, s *model.Shipment) error {
	stored, ok := r.shipments[s.ID]
	if !ok {
		return errNotFound
	}
	c := cloneShipment(s)
	c.Items = stored.Items
	r.shipments[s.ID] = c
	return nil
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shipment, error) {
	s, ok := r.shipments[id]
	if !ok {
		return nil, errNotFound
	}
	return cloneShipment(s), nil
}

func (r *stubShipmentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.shipments, id)
	return nil
}

func (r *stubShipmentRepo) ReplaceItems(_ context.Context, _ *gorm.DB, shipmentID uuid.UUID, itemType model.ItemType, items []model.ShipmentItem) error {
	s, ok := r.shipments[shipmentID]
	if !ok {
		return errNotFound
	}
	kept := make([]model.ShipmentItem, 0, len(s.Items)+len(items))
	for _, item := range s.Items {
		if item.ItemType != itemType {
			kept = append(kept, item)
		}
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.ShipmentID = shipmentID
		kept = append(kept, item)
	}
	s.Items = kept
	return nil
}

func (r *stubShipmentRepo) List(_ context.Context, f dto.ShipmentFilter) ([]model.Shipment, int64, error) {
	out := make([]model.Shipment, 0, len(r.shipments))
	for _, s := range r.shipments {
		if matchesFilter(s, f) {
			out = append(out, *cloneShipment(s))
		}
	}
	return out, int64(len(out)), nil
}

func matchesFilter(s *model.Shipment, f dto.ShipmentFilter) bool {
	if f.ShopID != "" && s.ShopID.String() != f.ShopID {
		return false
	}
	if f.DriverID != "" && (s.DriverID == nil || s.DriverID.String() != f.DriverID) {
		return false
	}
	return matchesStatuses(s.Status, f.Statuses)
}

func matchesStatuses(status model.ShipmentStatus, statuses []string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == string(status) {
			return true
		}
	}
	return false
}

func (r *stubShipmentRepo) Count(_ context.Context, f dto.ShipmentFilter) (int64, error) {
	var n int64
	for _, s := range r.shipments {
		if matchesFilter(s, f) {
			n++
		}
	}
	return n, nil
}

func (r *stubShipmentRepo) Aggregates(_ context.Context, _ dto.ShipmentFilter) (dto.ShipmentAggregates, error) {
	return r.aggregates, nil
}

func (r *stubShipmentRepo) ProductAggregates(_ context.Context, _ dto.ShipmentFilter, itemType model.ItemType) ([]dto.ProductAggregate, error) {
	if itemType == model.ItemReturn {
		return r.returned, nil
	}
	return r.sold, nil
}

func (r *stubShipmentRepo) DailyTotals(_ context.Context, _ dto.ShipmentFilter) ([]repository.DailyTotal, error) {
	return r.daily, nil
}

func (r *stubShipmentRepo) LastForShop(_ context.Context, shopID uuid.UUID, from, to time.Time) (*model.Shipment, error) {
	var best *model.Shipment
	for _, s := range r.shipments {
		if s.ShopID != shopID || s.Status == model.StatusBozza {
			continue
		}
		if s.ShipmentDate.Before(from) || s.ShipmentDate.After(to) {
			continue
		}
		if best == nil || s.ShipmentDate.After(best.ShipmentDate) {
			best = s
		}
	}
	if best == nil {
		return nil, errNotFound
	}
	return cloneShipment(best), nil
}

func (r *stubShipmentRepo) ListForDriverOnDate(_ context.Context, driverID uuid.UUID, day time.Time) ([]model.Shipment, error) {
	out := make([]model.Shipment, 0)
	for _, s := range r.shipments {
		if s.DriverID == nil || *s.DriverID != driverID || s.Status == model.StatusBozza {
			continue
		}
		y1, m1, d1 := s.ShipmentDate.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			out = append(out, *cloneShipment(s))
		}
	}
	return out, nil
}

func (r *stubShipmentRepo) UpdateColumns(_ context.Context, id uuid.UUID, cols map[string]any) error {
	s, ok := r.shipments[id]
	if !ok {
		return errNotFound
	}
	if v, ok := cols["status"]; ok {
		s.Status = v.(model.ShipmentStatus)
	}
	if v, ok := cols["pdf_path"]; ok {
		path := v.(string)
		s.PDFPath = &path
	}
	return nil
}

func (r *stubShipmentRepo) MarkEmailSent(_ context.Context, id uuid.UUID) error {
	if s, ok := r.shipments[id]; ok {
		s.EmailSent = true
	}
	return nil
}

func (r *stubShipmentRepo) MarkWhatsAppSent(_ context.Context, id uuid.UUID) error {
	if s, ok := r.shipments[id]; ok {
		s.WhatsappSent = true
	}
	return nil
}

func (r *stubShipmentRepo) ListUnnotified(_ context.Context, _ int) ([]model.Shipment, error) {
	return nil, nil
}

// stubShopRepo is an in-memory ShopRepository.
type stubShopRepo struct {
	shops map[uuid.UUID]*model.Shop
}

func newStubShopRepo() *stubShopRepo {
	return &stubShopRepo{shops: make(map[uuid.UUID]*model.Shop)}
}

func (r *stubShopRepo) Create(_ context.Context, s *model.Shop) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.shops[s.ID] = s
	return nil
}

func (r *stubShopRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	s, ok := r.shops[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubShopRepo) FindByCode(_ context.Context, code string) (*model.Shop, error) {
	for _, s := range r.shops {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (r *stubShopRepo) List(_ context.Context, includeInactive bool) ([]model.Shop, error) {
	out := make([]model.Shop, 0, len(r.shops))
	for _, s := range r.shops {
		if s.Active || includeInactive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubShopRepo) Update(_ context.Context, s *model.Shop) error {
	r.shops[s.ID] = s
	return nil
}

func (r *stubShopRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s, ok := r.shops[id]
	if !ok {
		return errNotFound
	}
	s.Active = false
	return nil
}

func (r *stubShopRepo) HasShipments(_ context.Context, _ uuid.UUID) (bool, error) {
	return false, nil
}

// stubProductRepo is an in-memory ProductRepository.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, includeInactive bool) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Active || includeInactive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) IsReferenced(_ context.Context, _ uuid.UUID) (bool, error) {
	return false, nil
}

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

// FindByUsername mirrors the real repository: inactive accounts do not exist
// as far as login is concerned.
func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) ListDrivers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0)
	for _, u := range r.users {
		if u.Role == model.RoleDriver && u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Active = active
	return nil
}

// stubReturnRepo is an in-memory ReturnRepository.
type stubReturnRepo struct {
	returns map[uuid.UUID]*model.Return
}

func newStubReturnRepo() *stubReturnRepo {
	return &stubReturnRepo{returns: make(map[uuid.UUID]*model.Return)}
}

func (r *stubReturnRepo) DB() *gorm.DB { return nil }

func (r *stubReturnRepo) Create(_ context.Context, _ *gorm.DB, ret *model.Return) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	_ = ret.BeforeCreate(nil)
	for i := range ret.Items {
		if ret.Items[i].ID == uuid.Nil {
			ret.Items[i].ID = uuid.New()
		}
		ret.Items[i].ReturnID = ret.ID
	}
	r.returns[ret.ID] = ret
	return nil
}

func (r *stubReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Return, error) {
	ret, ok := r.returns[id]
	if !ok {
		return nil, errNotFound
	}
	return ret, nil
}

func (r *stubReturnRepo) List(_ context.Context, f repository.ReturnFilter) ([]model.Return, error) {
	out := make([]model.Return, 0, len(r.returns))
	for _, ret := range r.returns {
		if f.ShopID != "" && ret.ShopID.String() != f.ShopID {
			continue
		}
		if f.ShipmentID != "" && ret.ShipmentID.String() != f.ShipmentID {
			continue
		}
		if f.Status != "" && string(ret.Status) != f.Status {
			continue
		}
		out = append(out, *ret)
	}
	return out, nil
}

func (r *stubReturnRepo) UpdateStatus(_ context.Context, id uuid.UUID, cols map[string]any) error {
	ret, ok := r.returns[id]
	if !ok {
		return errNotFound
	}
	if v, ok := cols["status"]; ok {
		ret.Status = v.(model.ReturnStatus)
	}
	if v, ok := cols["processed_by_id"]; ok {
		actor := v.(uuid.UUID)
		ret.ProcessedByID = &actor
	}
	if v, ok := cols["return_date"]; ok {
		ret.ReturnDate = v.(time.Time)
	}
	if v, ok := cols["reason"]; ok {
		ret.Reason = v.(*string)
	}
	if v, ok := cols["notes"]; ok {
		ret.Notes = v.(*string)
	}
	if v, ok := cols["processed_at"]; ok {
		at := v.(time.Time)
		ret.ProcessedAt = &at
	}
	return nil
}

func (r *stubReturnRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.returns, id)
	return nil
}

// ── Seed Helpers ──────────────────────────────────────────────────────────────

func seedShop(repo *stubShopRepo) *model.Shop {
	email := "negozio@test.it"
	wa := "+393331234567"
	s := &model.Shop{
		ID: uuid.New(), Code: "NEG-001", Name: "Negozio Centro",
		Address: "Via Roma 1", City: "Lecce",
		Email: &email, WhatsappNumber: &wa, Active: true,
	}
	repo.shops[s.ID] = s
	return s
}

func seedProduct(repo *stubProductRepo, code, name string, price string) *model.Product {
	p := &model.Product{
		ID: uuid.New(), Code: code, Name: name,
		Category:  model.CategoryBread,
		UnitPrice: decimal.RequireFromString(price),
		Unit:      "kg", Active: true,
	}
	repo.products[p.ID] = p
	return p
}

func seedDriver(repo *stubUserRepo) *model.User {
	u := &model.User{
		ID: uuid.New(), Username: "autista", FullName: "Mario Autista",
		Role: model.RoleDriver, Active: true,
	}
	repo.users[u.ID] = u
	return u
}
