package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

type orderEnv struct {
	uc       *OrderDraftUseCase
	orders   *fakeOrders
	renderer *fakeRenderer
	mailer   *fakeMailer
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()
	catalog, movs, purchases := stockFixture()
	replenishment := NewReplenishmentUseCase(newIndicators(catalog, movs, nil), purchases)
	suppliers := &fakeSuppliers{byID: map[string]*entity.Supplier{
		"sup-1": {ID: "sup-1", Name: "EPI Sul Ltda", Email: "vendas@episul.com.br"},
	}}
	env := &orderEnv{orders: newFakeOrders(), renderer: &fakeRenderer{}, mailer: &fakeMailer{}}
	env.uc = NewOrderDraftUseCase(env.orders, suppliers, replenishment, env.renderer, env.mailer, zerolog.Nop())
	env.uc.SetClock(func() time.Time { return fixedNow })
	return env
}

func TestBuildOrderDraft(t *testing.T) {
	env := newOrderEnv(t)
	price := dec("95.00")

	o, err := env.uc.BuildOrderDraft(context.Background(), dto.BuildOrderDraftRequest{
		Lines: []dto.OrderLineInput{
			{ItemID: "luva"},
			{ItemID: "bota", Quantity: qty(20), UnitPrice: &price},
		},
		Notes: "  urgente ",
	}, "Maria")
	require.NoError(t, err)

	assert.Equal(t, "draft", o.Status)
	assert.Equal(t, "urgente", o.Notes)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 82, o.Lines[0].Quantity)
	assert.True(t, dec("615").Equal(o.Lines[0].LineTotal))
	assert.Equal(t, 20, o.Lines[1].Quantity)
	assert.True(t, dec("2515").Equal(o.Total))

	stored, err := env.uc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)
}

func TestBuildOrderDraft_Validaciones(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()

	_, err := env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{}, "Maria")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{Lines: []dto.OrderLineInput{{ItemID: "capacete"}}}, "Maria")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lines", verr.Field, "capacete no necesita reposición")

	_, err = env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{SupplierID: "sup-x", Lines: []dto.OrderLineInput{{ItemID: "luva"}}}, "Maria")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "supplier_id", verr.Field)

	_, err = env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{Lines: []dto.OrderLineInput{{ItemID: "luva", Quantity: qty(0)}}}, "Maria")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmitOrder(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	o, err := env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{Lines: []dto.OrderLineInput{{ItemID: "luva"}}}, "Maria")
	require.NoError(t, err)

	_, err = env.uc.SubmitOrder(ctx, o.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "supplier_id", verr.Field)
	assert.Zero(t, env.renderer.calls)

	_, err = env.uc.SetSupplier(ctx, o.ID, dto.SetOrderSupplierRequest{SupplierID: "sup-1"})
	require.NoError(t, err)

	// falla de correo: el pedido sigue en borrador
	env.mailer.err = errors.New("sendgrid: 503")
	_, err = env.uc.SubmitOrder(ctx, o.ID)
	require.Error(t, err)
	stored, _ := env.uc.GetOrder(ctx, o.ID)
	assert.Equal(t, "draft", stored.Status)

	env.mailer.err = nil
	sent, err := env.uc.SubmitOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", sent.Status)
	require.NotNil(t, sent.SentAt)
	assert.Equal(t, []string{o.ID + "→vendas@episul.com.br"}, env.mailer.sent)
	assert.Equal(t, []byte("%PDF-"+o.ID), env.mailer.docs[0])

	_, err = env.uc.SubmitOrder(ctx, o.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = env.uc.UpdateOrderLine(ctx, o.ID, "luva", dto.UpdateOrderLineRequest{Quantity: qty(5)})
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "un pedido enviado no se edita")
}

func TestSubmitOrder_SinCorreoSigueEnBorrador(t *testing.T) {
	catalog, movs, purchases := stockFixture()
	replenishment := NewReplenishmentUseCase(newIndicators(catalog, movs, nil), purchases)
	suppliers := &fakeSuppliers{byID: map[string]*entity.Supplier{
		"sup-1": {ID: "sup-1", Name: "EPI Sul Ltda", Email: "vendas@episul.com.br"},
	}}
	orders, renderer := newFakeOrders(), &fakeRenderer{}
	uc := NewOrderDraftUseCase(orders, suppliers, replenishment, renderer, nil, zerolog.Nop())
	uc.SetClock(func() time.Time { return fixedNow })
	ctx := context.Background()

	o, err := uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{SupplierID: "sup-1", Lines: []dto.OrderLineInput{{ItemID: "luva"}}}, "Maria")
	require.NoError(t, err)

	_, err = uc.SubmitOrder(ctx, o.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.Zero(t, renderer.calls)

	stored, err := uc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", stored.Status)
	assert.Nil(t, stored.SentAt)
}

func TestChangeOrderStatus(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	o, err := env.uc.BuildOrderDraft(ctx, dto.BuildOrderDraftRequest{SupplierID: "sup-1", Lines: []dto.OrderLineInput{{ItemID: "luva"}, {ItemID: "bota"}}}, "Maria")
	require.NoError(t, err)

	_, err = env.uc.ChangeOrderStatus(ctx, o.ID, dto.ChangeOrderStatusRequest{Status: "sent"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "sent solo vía envío")
	_, err = env.uc.ChangeOrderStatus(ctx, o.ID, dto.ChangeOrderStatusRequest{Status: "received"})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	edited, err := env.uc.RemoveOrderLine(ctx, o.ID, "bota")
	require.NoError(t, err)
	assert.Len(t, edited.Lines, 1)

	_, err = env.uc.SubmitOrder(ctx, o.ID)
	require.NoError(t, err)
	confirmed, err := env.uc.ChangeOrderStatus(ctx, o.ID, dto.ChangeOrderStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	list, err := env.uc.ListOrders(ctx, "confirmed", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = env.uc.ListOrders(ctx, "approved", dto.PageRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.uc.GetOrder(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
