package tests

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todayString() string { return time.Now().Format("2006-01-02") }

type shipmentEnv struct {
	svc      service.ShipmentService
	repo     *stubShipmentRepo
	shops    *stubShopRepo
	products *stubProductRepo
	users    *stubUserRepo

	shop    *model.Shop
	bread   *model.Product
	focacce *model.Product
	driver  *model.User
}

func newShipmentEnv(t *testing.T) *shipmentEnv {
	t.Helper()
	env := &shipmentEnv{
		repo:     newStubShipmentRepo(),
		shops:    newStubShopRepo(),
		products: newStubProductRepo(),
		users:    newStubUserRepo(),
	}
	env.shop = seedShop(env.shops)
	env.bread = seedProduct(env.products, "PANE-001", "Pane Casereccio", "2.00")
	env.focacce = seedProduct(env.products, "FOC-001", "Focaccia Barese", "3.50")
	env.driver = seedDriver(env.users)
	env.svc = service.NewShipmentService(env.repo, env.shops, env.products, env.users, nil, "Panificio Test", t.TempDir(), "")
	return env
}

func (e *shipmentEnv) createDraft(t *testing.T) *dto.ShipmentResponse {
	t.Helper()
	driverID := e.driver.ID.String()
	resp, err := e.svc.Create(context.Background(), uuid.New(), dto.CreateShipmentRequest{
		ShopID:       e.shop.ID.String(),
		DriverID:     &driverID,
		ShipmentDate: "2026-08-28",
		Items: []dto.ShipmentItemRequest{
			{ProductID: e.bread.ID.String(), Quantity: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	return resp
}

func (e *shipmentEnv) confirm(t *testing.T, id string) *dto.ShipmentResponse {
	t.Helper()
	resp, err := e.svc.ChangeStatus(context.Background(), uuid.MustParse(id), model.StatusInConsegna)
	require.NoError(t, err)
	return resp
}

func TestCreateShipmentDraft(t *testing.T) {
	env := newShipmentEnv(t)
	resp := env.createDraft(t)

	assert.Equal(t, "BOZZA", resp.Status)
	assert.True(t, strings.HasPrefix(resp.ShipmentNumber, "SHP-"))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "20.00", resp.Totals.TotalShipmentValue)
	assert.Equal(t, "0.00", resp.Totals.TotalReturnsValue)
	assert.Equal(t, "20.00", resp.Totals.NetValue)
}

// Prices always come from the catalog, never from the client payload.
func TestCreateShipmentSnapshotsCatalogPrice(t *testing.T) {
	env := newShipmentEnv(t)
	resp := env.createDraft(t)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2", resp.Items[0].UnitPrice.String())

	// A later price change must not touch the saved line.
	env.bread.UnitPrice = decimal.RequireFromString("9.99")
	reread, err := env.svc.Get(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "20.00", reread.Totals.TotalShipmentValue)
}

func TestCreateShipmentInactiveShopRejected(t *testing.T) {
	env := newShipmentEnv(t)
	env.shop.Active = false

	_, err := env.svc.Create(context.Background(), uuid.New(), dto.CreateShipmentRequest{
		ShopID:       env.shop.ID.String(),
		ShipmentDate: "2026-08-28",
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	assert.Error(t, err)
}

func TestCreateShipmentZeroQuantityRejected(t *testing.T) {
	env := newShipmentEnv(t)
	_, err := env.svc.Create(context.Background(), uuid.New(), dto.CreateShipmentRequest{
		ShopID:       env.shop.ID.String(),
		ShipmentDate: "2026-08-28",
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.Zero},
		},
	})
	assert.Error(t, err)
}

func TestConfirmGeneratesDDT(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)

	confirmed := env.confirm(t, draft.ID)
	assert.Equal(t, "IN_CONSEGNA", confirmed.Status)
	require.NotNil(t, confirmed.PDFPath)
	_, err := os.Stat(*confirmed.PDFPath)
	assert.NoError(t, err, "DDT file should exist on disk")
}

func TestStatusTransitionsAreForwardOnly(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	id := uuid.MustParse(draft.ID)
	ctx := context.Background()

	// Skipping a step is rejected.
	_, err := env.svc.ChangeStatus(ctx, id, model.StatusConsegnata)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	env.confirm(t, draft.ID)

	// Going backwards is rejected.
	_, err = env.svc.ChangeStatus(ctx, id, model.StatusBozza)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	delivered, err := env.svc.ChangeStatus(ctx, id, model.StatusConsegnata)
	require.NoError(t, err)
	assert.Equal(t, "CONSEGNATA", delivered.Status)

	// CONSEGNATA is terminal.
	_, err = env.svc.ChangeStatus(ctx, id, model.StatusConsegnata)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestUpdateConfirmedShipmentRejected(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	notes := "modifica tardiva"
	_, err := env.svc.Update(context.Background(), uuid.MustParse(draft.ID), dto.UpdateShipmentRequest{Notes: &notes})
	assert.ErrorIs(t, err, service.ErrNotDraft)
}

func TestDeleteConfirmedShipmentRejected(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	err := env.svc.Delete(context.Background(), uuid.MustParse(draft.ID))
	assert.ErrorIs(t, err, service.ErrDraftOnlyDelete)
}

func TestDeleteDraft(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)

	require.NoError(t, env.svc.Delete(context.Background(), uuid.MustParse(draft.ID)))
	_, err := env.svc.Get(context.Background(), uuid.MustParse(draft.ID))
	assert.ErrorIs(t, err, service.ErrShipmentNotFound)
}

func TestPDFNotAvailableForDraft(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)

	_, err := env.svc.PDFPath(context.Background(), uuid.MustParse(draft.ID))
	assert.ErrorIs(t, err, service.ErrPDFNotAvailable)
}

// ── Returns reconciliation ────────────────────────────────────────────────────

func TestAttachReturnsOnDraftRejected(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)

	_, err := env.svc.AttachReturns(context.Background(), uuid.MustParse(draft.ID), dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, service.ErrNotDelivered)
}

func TestAttachReturnsNetsTheTotals(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	resp, err := env.svc.AttachReturns(context.Background(), uuid.MustParse(draft.ID), dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", resp.Totals.TotalShipmentValue)
	assert.Equal(t, "6.00", resp.Totals.TotalReturnsValue)
	assert.Equal(t, "14.00", resp.Totals.NetValue)
}

// Return lines settle at the delivery price even if the catalog moved since.
func TestAttachReturnsInheritsShippedPrice(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	env.bread.UnitPrice = decimal.RequireFromString("5.00")

	resp, err := env.svc.AttachReturns(context.Background(), uuid.MustParse(draft.ID), dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", resp.Totals.TotalReturnsValue)
}

func TestAttachReturnsExceedingShippedRejected(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	_, err := env.svc.AttachReturns(context.Background(), uuid.MustParse(draft.ID), dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(11)},
		},
	})
	assert.ErrorIs(t, err, service.ErrReturnExceedsShipped)
}

func TestAttachReturnsAllZeroRejected(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)

	_, err := env.svc.AttachReturns(context.Background(), uuid.MustParse(draft.ID), dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.Zero},
			{ProductID: env.focacce.ID.String(), Quantity: decimal.Zero},
		},
	})
	assert.ErrorIs(t, err, service.ErrNoReturnItems)
}

// Re-posting the batch replaces the previous RETURN lines instead of
// accumulating them.
func TestAttachReturnsReplacesPreviousBatch(t *testing.T) {
	env := newShipmentEnv(t)
	draft := env.createDraft(t)
	env.confirm(t, draft.ID)
	id := uuid.MustParse(draft.ID)
	ctx := context.Background()

	_, err := env.svc.AttachReturns(ctx, id, dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	resp, err := env.svc.AttachReturns(ctx, id, dto.AttachReturnsRequest{
		Items: []dto.ShipmentItemRequest{
			{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", resp.Totals.TotalReturnsValue)
	assert.Equal(t, "16.00", resp.Totals.NetValue)
}

// ── Driver view ───────────────────────────────────────────────────────────────

func TestTodayForDriverSkipsDrafts(t *testing.T) {
	env := newShipmentEnv(t)
	ctx := context.Background()

	driverID := env.driver.ID.String()
	mk := func() *dto.ShipmentResponse {
		resp, err := env.svc.Create(ctx, uuid.New(), dto.CreateShipmentRequest{
			ShopID:       env.shop.ID.String(),
			DriverID:     &driverID,
			ShipmentDate: todayString(),
			Items: []dto.ShipmentItemRequest{
				{ProductID: env.bread.ID.String(), Quantity: decimal.NewFromInt(1)},
			},
		})
		require.NoError(t, err)
		return resp
	}

	mk() // stays a draft
	confirmed := mk()
	env.confirm(t, confirmed.ID)

	today, err := env.svc.TodayForDriver(ctx, env.driver.ID)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, confirmed.ID, today[0].ID)
}
