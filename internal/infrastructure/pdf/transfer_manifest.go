// Package pdf genera el manifiesto de despacho de un traslado entre bodegas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: MANIFIESTO DE TRASLADO  │  N° Traslado + Estado     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: bodega + dirección  │  DESTINO: bodega + dirección  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | Cantidad                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESPONSABLES: solicitó / aprobó / despachó / recibió        │
//	│  QR con el número del traslado + firmas                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

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

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.ManifestRenderer = (*MarotoManifestRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "02/01/2006 15:04"

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoManifestRenderer implementa inventory.ManifestRenderer usando Maroto v2.
type MarotoManifestRenderer struct{}

// NewMarotoManifestRenderer construye el generador.
func NewMarotoManifestRenderer() *MarotoManifestRenderer { return &MarotoManifestRenderer{} }

// RenderTransferManifest genera el PDF y devuelve sus bytes.
func (g *MarotoManifestRenderer) RenderTransferManifest(data inventory.TransferManifestData) ([]byte, error) {
	t := data.Transfer
	if t == nil {
		return nil, fmt.Errorf("pdf: traslado requerido")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Manifiesto de traslado "+t.TransferNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t, data.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehousesRow(t, data.FromWarehouse, data.ToWarehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(t.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(t.Items))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(t *entity.StockTransfer, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("MANIFIESTO DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+generatedAt.Format(dateLayout), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Estado: "+string(t.Status), props.Text{
				Size: 9, Align: align.Right, Top: 8, Color: colorPrimary,
			}),
			text.New("Solicitado: "+t.RequestedAt.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func warehousesRow(t *entity.StockTransfer, from, to *entity.Warehouse) core.Row {
	block := func(title, id string, wh *entity.Warehouse) core.Col {
		name, address := id, "-"
		if wh != nil {
			name = nonEmpty(wh.Name, id)
			address = nonEmpty(wh.Address, "-")
		}
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(address, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		block("BODEGA ORIGEN", t.FromWarehouseID, from),
		block("BODEGA DESTINO", t.ToWarehouseID, to),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Producto", 8, align.Left),
		h("Cantidad", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del traslado.
func tableDetailRows(items []entity.StockTransferItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(8).Add(text.New(it.ProductID, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(3).Add(text.New(strconv.Itoa(it.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(items []entity.StockTransferItem) core.Row {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return row.New(8).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(strconv.Itoa(total), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 1, Color: colorPrimary,
		})),
	)
}

// footerRow: QR con el número del traslado y responsables de cada paso.
func footerRow(t *entity.StockTransfer) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(t.TransferNumber+"|"+t.ID, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("RESPONSABLES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 3}),
			text.New(responsible("Solicitó", t.RequestedBy, &t.RequestedAt), props.Text{Size: 8, Top: 9, Left: 3}),
			text.New(responsible("Aprobó", t.ApprovedBy, t.ApprovedAt), props.Text{Size: 8, Top: 15, Left: 3}),
			text.New(responsible("Despachó", t.ShippedBy, t.ShippedAt), props.Text{Size: 8, Top: 21, Left: 3}),
			text.New(responsible("Recibió", t.ReceivedBy, t.ReceivedAt), props.Text{Size: 8, Top: 27, Left: 3}),
			text.New("Firma de quien recibe: ______________________", props.Text{
				Size: 8, Top: 38, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func responsible(label, by string, at *time.Time) string {
	if by == "" || at == nil {
		return label + ": -"
	}
	return fmt.Sprintf("%s: %s (%s)", label, by, at.Format(dateLayout))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
