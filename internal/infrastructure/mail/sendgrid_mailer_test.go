package mail

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/rs/zerolog"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
)

func sampleOrder() *entity.PurchaseOrder {
	o := entity.NewPurchaseOrderDraft("3f2b9c1a-0000-4000-8000-000000000001", []entity.ReplenishmentSuggestion{
		{ItemID: "luva", Description: "Luva de raspa", Unit: "PAR", SuggestedQuantity: 82, ReferencePrice: decimal.RequireFromString("7.50")},
	}, "sup-1", "Maria", time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	o.Notes = "Entrega até sexta"
	return o
}

func TestBuildMessage(t *testing.T) {
	supplier := &entity.Supplier{ID: "sup-1", Name: "EPI Sul", Email: "vendas@episul.com.br", Contact: "Carla"}
	msg := buildMessage(sgmail.NewEmail("Almoxarifado", "compras@alfa.com.br"), "comprador@alfa.com.br", sampleOrder(), supplier, []byte("%PDF-1.4"))

	assert.Equal(t, "Pedido de compra 3F2B9C1A", msg.Subject)
	require.Len(t, msg.Personalizations, 1)
	require.Len(t, msg.Personalizations[0].To, 1)
	assert.Equal(t, "vendas@episul.com.br", msg.Personalizations[0].To[0].Address)
	assert.Equal(t, "comprador@alfa.com.br", msg.ReplyTo.Address)

	require.Len(t, msg.Content, 2)
	assert.Contains(t, msg.Content[0].Value, "Luva de raspa: 82 PAR")
	assert.Contains(t, msg.Content[0].Value, "R$ 615.00")
	assert.Contains(t, msg.Content[0].Value, "Entrega até sexta")

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "pedido-3F2B9C1A.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")), msg.Attachments[0].Content)
}

func TestNewSendGridMailer_ConfigIncompleta(t *testing.T) {
	_, err := NewSendGridMailer(config.MailConfig{FromAddress: "a@b.c"}, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewSendGridMailer(config.MailConfig{SendGridAPIKey: "SG.x"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSendPurchaseOrder_ProveedorSinEmail(t *testing.T) {
	m, err := NewSendGridMailer(config.MailConfig{SendGridAPIKey: "SG.x", FromAddress: "a@b.c"}, zerolog.Nop())
	require.NoError(t, err)
	err = m.SendPurchaseOrder(context.Background(), sampleOrder(), &entity.Supplier{Name: "Sem email"}, nil)
	assert.Error(t, err)
}
