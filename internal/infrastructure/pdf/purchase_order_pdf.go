// Package pdf genera el documento del pedido de compra que se adjunta al correo del proveedor.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Comprador + CNPJ     │  N° Pedido + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FORNECEDOR: Razón social + CNPJ + contacto                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Un | Cant | P.Unit | Total     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + Observaciones + QR con la referencia del pedido      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/pkg/taxid"
)

var _ inventory.OrderRenderer = (*PurchaseOrderGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Buyer datos de la empresa compradora impresos en el encabezado.
type Buyer struct {
	Name    string
	TaxID   string
	Address string
	Email   string
}

// PurchaseOrderGenerator implementa inventory.OrderRenderer con Maroto v2.
type PurchaseOrderGenerator struct {
	buyer Buyer
}

// NewPurchaseOrderGenerator construye el generador.
func NewPurchaseOrderGenerator(buyer Buyer) *PurchaseOrderGenerator {
	return &PurchaseOrderGenerator{buyer: buyer}
}

// RenderPurchaseOrder genera el PDF y devuelve sus bytes. supplier puede ser nil (borrador sin
// proveedor asignado).
func (g *PurchaseOrderGenerator) RenderPurchaseOrder(_ context.Context, order *entity.PurchaseOrder, supplier *entity.Supplier) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Pedido de compra "+shortID(order.ID), true).
		WithAuthor(g.buyer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(order.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))
	m.AddRows(footerRows(order)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar pedido: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *PurchaseOrderGenerator) headerRow(order *entity.PurchaseOrder) core.Row {
	date := order.CreatedAt
	if order.SentAt != nil {
		date = *order.SentAt
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.buyer.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("CNPJ: %s   |   %s", nonEmpty(taxid.Format(g.buyer.TaxID), "—"), nonEmpty(g.buyer.Email, "—")),
				props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New(g.buyer.Address, props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("PEDIDO DE COMPRA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("N° "+shortID(order.ID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Data: "+date.Format("02/01/2006"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func supplierRow(supplier *entity.Supplier) core.Row {
	if supplier == nil {
		return row.New(10).Add(col.New(12).Add(
			text.New("FORNECEDOR: não informado (rascunho)", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 2}),
		))
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("FORNECEDOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(supplier.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("CNPJ: %s   |   Contato: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(taxid.Format(supplier.TaxID), "—"),
				nonEmpty(supplier.Contact, "—"),
				nonEmpty(supplier.Email, "—"),
				nonEmpty(supplier.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Item", 2, align.Left),
		h("Descrição", 4, align.Left),
		h("Un", 1, align.Center),
		h("Qtd", 1, align.Center),
		h("Preço unit.", 2, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []entity.OrderLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(shortID(l.ItemID), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatBRL(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatBRL(l.LineTotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalRow(order *entity.PurchaseOrder) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL DO PEDIDO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(formatBRL(order.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRows(order *entity.PurchaseOrder) []core.Row {
	rows := []core.Row{row.New(4)}
	if order.Notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("Observações", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary}),
			text.New(order.Notes, props.Text{Size: 8, Top: 5, Color: colorGray}),
		)))
	}
	rows = append(rows, row.New(40).Add(
		col.New(3).Add(code.NewQr(order.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referência do pedido: "+order.ID, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Por favor, confirme o recebimento deste pedido respondendo a este e-mail\ne informe o prazo de entrega.",
				props.Text{Size: 8, Top: 12, Left: 3}),
		),
	))
	return rows
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// shortID recorta UUIDs para impresión.
func shortID(id string) string {
	if len(id) > 8 && strings.Count(id, "-") == 4 {
		return strings.ToUpper(id[:8])
	}
	return id
}

// formatBRL formatea en reales: 1234.5 → "R$ 1.234,50".
func formatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := "R$ " + string(buf) + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
