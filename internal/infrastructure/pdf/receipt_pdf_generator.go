// Package pdf genera el acta de recepción de una orden de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proveedor           │  ACTA DE RECEPCIÓN + orden   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORDEN: estado / fechas / condiciones de pago                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LÍNEAS: Producto | Pedido | Recibido | Pend. | Lote | Vence │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MOVIMIENTOS: Fecha | Medicamento | Cant. | Usuario          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES + QR con la referencia PO-<id>                      │
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

	"github.com/jhoicas/farmacia-api/internal/application/purchasing"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	dompurchasing "github.com/jhoicas/farmacia-api/internal/domain/purchasing"
)

var _ purchasing.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 90}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa purchasing.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateReceiptPDF genera el acta y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(
	_ context.Context,
	order *entity.PurchaseOrder,
	supplier *entity.Supplier,
	movements []*entity.InventoryMovement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de recepción "+order.ID, true).
		WithAuthor(nonEmpty(supplier.Name, "Proveedor"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order, supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("LÍNEAS DE LA ORDEN"))
	m.AddRows(linesHeaderRow())
	m.AddRows(lineRows(order.Lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("MOVIMIENTOS DE ENTRADA REGISTRADOS"))
	m.AddRows(movementsHeaderRow())
	m.AddRows(movementRows(order, movements)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(order *entity.PurchaseOrder, supplier *entity.Supplier) core.Row {
	contact := strings.Join(nonEmptyAll(supplier.ContactName, supplier.Phone, supplier.Email), "   |   ")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(supplier.Name, "Proveedor "+supplier.ID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(contact, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ACTA DE RECEPCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(dompurchasing.MovementReference(order.ID), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Fecha orden: "+order.OrderDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func orderRow(order *entity.PurchaseOrder) core.Row {
	received := "—"
	if order.ReceivedAt != nil {
		received = order.ReceivedAt.Format("02/01/2006 15:04")
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ESTADO: "+strings.ToUpper(order.Status), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Recibida: %s   |   Condiciones de pago: %s",
				received, nonEmpty(order.PaymentTerms, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func linesHeaderRow() core.Row {
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		headerCol("Producto", 4, align.Left),
		headerCol("Pedido", 1, align.Center),
		headerCol("Recibido", 1, align.Center),
		headerCol("Pend.", 1, align.Center),
		headerCol("Lote", 2, align.Left),
		headerCol("Vence", 1, align.Center),
		headerCol("P. Unit.", 2, align.Right),
	)
}

func lineRows(lines []entity.PurchaseOrderLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		expiry := "—"
		if l.ExpiryDate != nil {
			expiry = l.ExpiryDate.Format("01/2006")
		}
		out = append(out, row.New(7).Add(
			cell(l.ProductName, 4, align.Left),
			cell(formatQty(l.OrderedQty), 1, align.Center),
			cell(formatQty(l.ReceivedQty), 1, align.Center),
			cell(formatQty(l.PendingQty()), 1, align.Center),
			cell(nonEmpty(l.BatchNo, "—"), 2, align.Left),
			cell(expiry, 1, align.Center),
			cell("$"+formatMoney(l.UnitPrice.StringFixed(0)), 2, align.Right),
		))
	}
	return out
}

func movementsHeaderRow() core.Row {
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		headerCol("Fecha", 3, align.Left),
		headerCol("Medicamento", 5, align.Left),
		headerCol("Cant.", 1, align.Center),
		headerCol("Usuario", 3, align.Left),
	)
}

// movementRows resuelve el nombre del producto por la línea que enlaza el medicamento.
func movementRows(order *entity.PurchaseOrder, movements []*entity.InventoryMovement) []core.Row {
	if len(movements) == 0 {
		return []core.Row{row.New(7).Add(cell("Sin recepciones registradas", 12, align.Center))}
	}
	names := make(map[string]string, len(order.Lines))
	for _, l := range order.Lines {
		if l.MedicineID != "" {
			names[l.MedicineID] = l.ProductName
		}
	}
	out := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		out = append(out, row.New(7).Add(
			cell(mv.CreatedAt.Format("02/01/2006 15:04"), 3, align.Left),
			cell(nonEmpty(names[mv.MedicineID], mv.MedicineID), 5, align.Left),
			cell(formatQty(mv.Quantity), 1, align.Center),
			cell(mv.UserID, 3, align.Left),
		))
	}
	return out
}

func totalsRow(order *entity.PurchaseOrder) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(dompurchasing.MovementReference(order.ID), props.Rect{Percent: 90, Center: true})),
		col.New(3),
		col.New(3).Add(
			label("Total orden:"),
			label("Recibido:"),
			label("Pendiente:"),
		),
		col.New(3).Add(
			value("$"+formatMoney(order.TotalAmount.StringFixed(0))),
			value("$"+formatMoney(order.ReceivedAmount.StringFixed(0))),
			value("$"+formatMoney(order.RemainingAmount.StringFixed(0))),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonEmptyAll(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// formatQty cantidades enteras sin decimales; fraccionarias con hasta 3.
func formatQty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.Round(3).String()
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
