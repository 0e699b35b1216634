// Package export aplana el set de registros cargado a formatos tabulares
// descargables. El orden de columnas es fijo y documentado; los valores
// ausentes se representan siempre con el marcador "N/A" (nunca en blanco),
// de modo que el mismo conjunto de datos produce bytes idénticos.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// Placeholder marcador fijo para valores ausentes.
const Placeholder = "N/A"

// Columns orden documentado de columnas del export tabular.
var Columns = []string{
	"date", "time", "product", "sku", "type", "quantity", "unit", "reason",
	"created_by", "stock_before", "stock_after", "reference", "notes",
}

// Row aplana un movimiento a sus 13 columnas en el orden documentado.
func Row(m entity.Movement) []string {
	return []string{
		m.CreatedAt.Format("2006-01-02"),
		m.CreatedAt.Format("15:04:05"),
		orPlaceholder(m.ProductName),
		orPlaceholder(m.ProductSKU),
		orPlaceholder(m.Type),
		fmt.Sprintf("%d", m.Quantity),
		orPlaceholder(m.ProductUnit),
		orPlaceholder(m.Reason),
		orPlaceholder(m.CreatedByName),
		fmt.Sprintf("%d", m.StockBefore),
		fmt.Sprintf("%d", m.StockAfter),
		orPlaceholder(m.ReferenceNumber),
		orPlaceholder(m.Notes),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// CSV serializa los registros cargados (no necesariamente el filtrado
// completo) a CSV: una fila por registro, columnas en orden determinista.
// La misma entrada produce salida byte-idéntica.
func CSV(records []entity.Movement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("export csv: cabecera: %w", err)
	}
	for _, m := range records {
		if err := w.Write(Row(m)); err != nil {
			return nil, fmt.Errorf("export csv: fila %s: %w", m.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}
