package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
)

var _ inventory.OrderMailer = (*SendGridMailer)(nil)

// SendGridMailer envía los pedidos de compra al proveedor con el PDF adjunto.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	replyTo string
	log     zerolog.Logger
}

// NewSendGridMailer construye el mailer. Devuelve error si falta la API key o el remitente.
func NewSendGridMailer(cfg config.MailConfig, log zerolog.Logger) (*SendGridMailer, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, errors.New("sendgrid api key vacía")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("remitente vacío")
	}
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:    sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		replyTo: cfg.ReplyTo,
		log:     log,
	}, nil
}

// SendPurchaseOrder envía el pedido al email del proveedor.
func (m *SendGridMailer) SendPurchaseOrder(ctx context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier, document []byte) error {
	if supplier == nil || strings.TrimSpace(supplier.Email) == "" {
		return errors.New("el proveedor no tiene email")
	}
	message := buildMessage(m.from, m.replyTo, order, supplier, document)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	m.log.Info().
		Int("status", response.StatusCode).
		Str("order_id", order.ID).
		Str("to", supplier.Email).
		Msg("pedido enviado por email")
	return nil
}

func buildMessage(from *sgmail.Email, replyTo string, order *entity.PurchaseOrder, supplier *entity.Supplier, document []byte) *sgmail.SGMailV3 {
	ref := orderRef(order.ID)
	subject := fmt.Sprintf("Pedido de compra %s", ref)

	var body strings.Builder
	fmt.Fprintf(&body, "Prezados %s,\n\n", supplier.Name)
	fmt.Fprintf(&body, "Segue em anexo o pedido de compra %s com %d item(ns).\n", ref, len(order.Lines))
	for _, l := range order.Lines {
		fmt.Fprintf(&body, "  - %s: %d %s\n", l.Description, l.Quantity, l.Unit)
	}
	fmt.Fprintf(&body, "\nValor total: R$ %s\n", order.Total.StringFixed(2))
	if order.Notes != "" {
		fmt.Fprintf(&body, "Observações: %s\n", order.Notes)
	}
	body.WriteString("\nPor favor, confirme o recebimento e o prazo de entrega.\n")

	plain := body.String()
	message := sgmail.NewSingleEmail(from, subject, sgmail.NewEmail(supplier.Contact, supplier.Email),
		plain, "<pre>"+html.EscapeString(plain)+"</pre>")
	if replyTo != "" {
		message.SetReplyTo(sgmail.NewEmail("", replyTo))
	}

	if len(document) > 0 {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(document))
		att.SetType("application/pdf")
		att.SetFilename("pedido-" + ref + ".pdf")
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}
	return message
}

func orderRef(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return strings.ToUpper(id[:8])
	}
	return id
}
