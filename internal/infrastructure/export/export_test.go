package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/internal/infrastructure/export"
)

func sampleRecords() []entity.Movement {
	at := time.Date(2026, 8, 29, 14, 5, 9, 0, time.Local)
	return []entity.Movement{
		{
			ID: "m1", ProductID: "p1", ProductName: "Café molido 500g", ProductSKU: "CAF-001",
			ProductUnit: "und", Type: "in", Quantity: 25, StockBefore: 10, StockAfter: 35,
			UnitPrice: decimal.RequireFromString("12.50"), Reason: "compra proveedor",
			ReferenceNumber: "OC-2026-114", CreatedBy: "u1", CreatedByName: "Ana",
			CreatedAt: at,
		},
		{
			// Sin notas, referencia ni unidad: deben salir como N/A, no en blanco.
			ID: "m2", ProductID: "p2", ProductName: "Azúcar refinada", ProductSKU: "AZU-002",
			Type: "out", Quantity: 4, StockBefore: 12, StockAfter: 8,
			UnitPrice: decimal.RequireFromString("3.20"), Reason: "venta mostrador",
			CreatedBy: "u2", CreatedByName: "Luis",
			CreatedAt: at.Add(time.Hour),
		},
	}
}

// Determinismo: serializar dos veces el mismo set produce bytes idénticos.
func TestCSV_Determinista(t *testing.T) {
	records := sampleRecords()

	a, err := export.CSV(records)
	require.NoError(t, err)
	b, err := export.CSV(records)
	require.NoError(t, err)

	assert.Equal(t, a, b, "la misma entrada produce salida byte-idéntica")
}

func TestCSV_ColumnasYMarcadores(t *testing.T) {
	out, err := export.CSV(sampleRecords())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3, "cabecera + una fila por registro")

	assert.Equal(t,
		"date,time,product,sku,type,quantity,unit,reason,created_by,stock_before,stock_after,reference,notes",
		lines[0], "orden de columnas fijo y documentado")

	assert.Contains(t, lines[1], "2026-08-29,14:05:09,Café molido 500g,CAF-001,in,25,und,compra proveedor,Ana,10,35,OC-2026-114,N/A")
	assert.Contains(t, lines[2], "N/A", "los ausentes se marcan, nunca quedan en blanco")

	fields := strings.Split(lines[2], ",")
	require.Len(t, fields, len(export.Columns))
	assert.Equal(t, "N/A", fields[6], "unidad ausente")
	assert.Equal(t, "N/A", fields[11], "referencia ausente")
	assert.Equal(t, "N/A", fields[12], "notas ausentes")
	for _, f := range fields {
		assert.NotEmpty(t, f, "ningún campo del export queda vacío")
	}
}

func TestCSV_SinRegistros_SoloCabecera(t *testing.T) {
	out, err := export.CSV(nil)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestXML_DeterministaYConMarcadores(t *testing.T) {
	records := sampleRecords()

	a, err := export.XML(records)
	require.NoError(t, err)
	b, err := export.XML(records)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	s := string(a)
	assert.Contains(t, s, `<inventario total="2">`)
	assert.Contains(t, s, `<movimiento id="m1">`)
	assert.Contains(t, s, "<product>Café molido 500g</product>")
	assert.Contains(t, s, "<notes>N/A</notes>")
	assert.Contains(t, s, "<stock_before>12</stock_before>")

	// Cada movimiento lleva las 13 columnas documentadas.
	for _, col := range export.Columns {
		assert.Contains(t, s, "<"+col+">")
	}
}

func TestRow_OrdenYCompletitud(t *testing.T) {
	row := export.Row(sampleRecords()[0])
	require.Len(t, row, len(export.Columns))
	assert.Equal(t, "2026-08-29", row[0])
	assert.Equal(t, "14:05:09", row[1])
	assert.Equal(t, "25", row[5])
	assert.Equal(t, "10", row[9])
	assert.Equal(t, "35", row[10])
}
