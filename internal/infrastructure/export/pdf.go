package export

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PDF genera el reporte de historial de movimientos con Maroto v2:
// encabezado con el resumen de filtros activos, tabla de registros y bloque
// de totales de la página cargada.
func PDF(records []entity.Movement, filters movements.FilterCriteria, stats movements.DerivedStatistics, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Historial de movimientos de inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(filterSummaryRow(filters))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range records {
		m.AddRows(detailRow(r))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(stats)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(generatedAt time.Time) core.Row {
	return row.New(12).Add(
		col.New(8).Add(
			text.New("HISTORIAL DE MOVIMIENTOS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Top: 3,
			}),
		),
	)
}

// filterSummaryRow describe los filtros activos con los que se cargó la página.
func filterSummaryRow(f movements.FilterCriteria) core.Row {
	var parts []string
	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		parts = append(parts, fmt.Sprintf("Fechas: %s – %s",
			dateOrPlaceholder(f.StartDate), dateOrPlaceholder(f.EndDate)))
	}
	if f.MovementType != "" {
		parts = append(parts, "Tipo: "+typeLabel(f.MovementType))
	}
	if f.ProductID != "" {
		parts = append(parts, "Producto: "+f.ProductID)
	}
	if f.Reason != "" {
		parts = append(parts, "Motivo contiene: "+f.Reason)
	}
	if f.MinQuantity > 0 || f.MaxQuantity > 0 {
		parts = append(parts, fmt.Sprintf("Cantidad: %d–%d", f.MinQuantity, f.MaxQuantity))
	}
	summary := "Sin filtros activos"
	if len(parts) > 0 {
		summary = strings.Join(parts, "  |  ")
	}
	summary += fmt.Sprintf("  |  Orden: %s %s", f.SortBy, f.SortOrder)

	return row.New(7).Add(
		col.New(12).Add(
			text.New(summary, props.Text{Size: 7, Color: colorGray, Top: 1}),
		),
	)
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		headerCell("FECHA", 2),
		headerCell("PRODUCTO", 3),
		headerCell("TIPO", 1),
		headerCell("CANT", 1),
		headerCell("ANTES", 1),
		headerCell("DESPUÉS", 1),
		headerCell("MOTIVO", 2),
		headerCell("USUARIO", 1),
	)
}

func headerCell(label string, size int) core.Col {
	return col.New(size).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
	)
}

func detailRow(m entity.Movement) core.Row {
	return row.New(6).Add(
		cell(m.CreatedAt.Format("02/01/2006 15:04"), 2),
		cell(orPlaceholder(m.ProductName), 3),
		cell(typeLabel(m.Type), 1),
		cell(fmt.Sprintf("%d", m.Quantity), 1),
		cell(fmt.Sprintf("%d", m.StockBefore), 1),
		cell(fmt.Sprintf("%d", m.StockAfter), 1),
		cell(orPlaceholder(m.Reason), 2),
		cell(orPlaceholder(m.CreatedByName), 1),
	)
}

func cell(value string, size int) core.Col {
	return col.New(size).Add(
		text.New(value, props.Text{Size: 7, Top: 1}),
	)
}

// totalsRows resume la página cargada (no el filtrado completo).
func totalsRows(st movements.DerivedStatistics) []core.Row {
	return []core.Row{
		row.New(6).Add(
			col.New(8).Add(text.New("Totales de la página actual", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			})),
		),
		row.New(5).Add(
			col.New(3).Add(text.New(fmt.Sprintf("Movimientos: %d", st.TotalCount), props.Text{Size: 7, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("Entradas: %d (%d und)", st.InCount, st.InQuantity), props.Text{Size: 7, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("Salidas: %d (%d und)", st.OutCount, st.OutQuantity), props.Text{Size: 7, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("Balance neto: %+d", st.NetBalance), props.Text{Size: 7, Top: 1})),
		),
		row.New(5).Add(
			col.New(6).Add(text.New("Valor entradas: $"+st.InValue.StringFixed(2), props.Text{Size: 7, Top: 1})),
			col.New(6).Add(text.New("Valor salidas: $"+st.OutValue.StringFixed(2), props.Text{Size: 7, Top: 1})),
		),
	}
}

func typeLabel(t string) string {
	switch t {
	case entity.MovementTypeIn:
		return "ENTRADA"
	case entity.MovementTypeOut:
		return "SALIDA"
	default:
		return orPlaceholder(t)
	}
}

func dateOrPlaceholder(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("02/01/2006")
}
