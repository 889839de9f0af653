// Package pdf genera el comprobante imprimible de un movimiento de stock.
//
// Layout A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa               │  COMPROBANTE + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIPO + PRODUCTO + CANTIDAD                                  │
//	│  ORIGEN → DESTINO                                            │
//	│  PERSONA / PROVEEDOR / NOTA                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id del registro + id del backend          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
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

	"github.com/jhoicas/movimientos-api/internal/application/ports"
	"github.com/jhoicas/movimientos-api/internal/domain/entity"
)

var _ ports.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var tipoLabels = map[string]string{
	"ingreso":  "INGRESO A BODEGA CENTRAL",
	"egreso":   "EGRESO",
	"uso":      "USO / CONSUMO",
	"traspaso": "TRASPASO ENTRE LOCACIONES",
	"ajuste":   "AJUSTE DE INVENTARIO",
}

// MarotoReceiptGenerator implementa ports.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	companyName string
}

// NewMarotoReceiptGenerator construye el generador. companyName va en la cabecera.
func NewMarotoReceiptGenerator(companyName string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{companyName: companyName}
}

// GenerateMovementReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateMovementReceipt(_ context.Context, rec *entity.MovementRecord) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de movimiento", true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailRows(rec)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rec))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoReceiptGenerator) headerRow(rec *entity.MovementRecord) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Registrado por: "+nonEmpty(rec.UserID, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE MOVIMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(tipoLabel(rec.Tipo), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+rec.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func detailRows(rec *entity.MovementRecord) []core.Row {
	field := func(label, value string) core.Row {
		return row.New(7).Add(
			col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1})),
			col.New(8).Add(text.New(value, props.Text{Size: 9, Top: 1})),
		)
	}
	return []core.Row{
		field("Producto:", "#"+strconv.FormatInt(rec.ProductoID, 10)),
		field("Cantidad:", rec.Cantidad.StringFixed(3)),
		field("Origen:", idLabel(rec.FromLocacionID)),
		field("Destino:", idLabel(rec.ToLocacionID)),
		field("Persona:", idLabel(rec.PersonaID)),
		field("Proveedor:", idLabel(rec.ProveedorID)),
		field("Nota:", noteLabel(rec.Nota)),
	}
}

func footerRow(rec *entity.MovementRecord) core.Row {
	backend := "—"
	if rec.BackendID != nil {
		backend = strconv.FormatInt(*rec.BackendID, 10)
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(rec.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Registro: "+rec.ID, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Movimiento en backend: "+backend, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func tipoLabel(tipo string) string {
	if l, ok := tipoLabels[tipo]; ok {
		return l
	}
	return strings.ToUpper(tipo)
}

func idLabel(id *int64) string {
	if id == nil {
		return "—"
	}
	return "#" + strconv.FormatInt(*id, 10)
}

func noteLabel(n *string) string {
	if n == nil {
		return "—"
	}
	return *n
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
