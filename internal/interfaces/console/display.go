package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/session"
	"github.com/jhoicas/Inventario-console/internal/domain"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/internal/domain/inventory"
)

const tableWidth = 110

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) printHistory() {
	c.printf("\n%s\n", strings.Repeat("=", tableWidth))
	title := "  HISTORIAL DE MOVIMIENTOS"
	if c.history.Refreshing() {
		title += "  (actualizando…)"
	}
	c.printf("%s\n", title)
	if summary := filterSummary(c.history.Filters()); summary != "" {
		c.printf("  Filtros: %s\n", summary)
	}
	c.printf("%s\n", strings.Repeat("=", tableWidth))

	if c.history.Loading() {
		// Esqueleto: aún no llegó la primera respuesta.
		c.printf("  Cargando historial…\n")
		for i := 0; i < 3; i++ {
			c.printf("  %s\n", strings.Repeat("░", tableWidth-4))
		}
		c.printf("%s\n", strings.Repeat("=", tableWidth))
		return
	}

	if err := c.history.Err(); err != nil {
		c.printf("  %s\n", errorMessage(err))
		c.printf("  Use /refresh para reintentar.\n")
		c.printf("%s\n", strings.Repeat("=", tableWidth))
		return
	}

	records := c.history.Records()
	if len(records) == 0 {
		c.printf("  No hay movimientos con los filtros activos.\n")
		c.printf("%s\n", strings.Repeat("=", tableWidth))
		return
	}

	c.printf("  %-9s %-10s %-22s %-7s %6s %7s %8s %-20s %s\n",
		"ID", "FECHA", "PRODUCTO", "TIPO", "CANT", "ANTES", "DESPUÉS", "MOTIVO", "USUARIO")
	c.printf("%s\n", strings.Repeat("-", tableWidth))
	for _, m := range records {
		c.printf("  %-9s %-10s %-22s %-7s %6d %7d %8d %-20s %s\n",
			shortID(m.ID),
			m.CreatedAt.Format("2006-01-02"),
			truncate(m.ProductName, 22),
			typeLabel(m.Type),
			m.Quantity,
			m.StockBefore,
			m.StockAfter,
			truncate(m.Reason, 20),
			truncate(m.CreatedByName, 16),
		)
	}
	c.printf("%s\n", strings.Repeat("-", tableWidth))

	p := c.history.Pagination()
	c.printf("  Página %d de %d — %d movimientos en total (%d por página)\n",
		p.Page, p.TotalPages, p.Total, p.Limit)
	c.printf("%s\n", strings.Repeat("=", tableWidth))
}

func (c *Console) printFilters() {
	f := c.history.Filters()
	c.printf("\nFILTROS ACTIVOS\n")
	c.printf("%s\n", strings.Repeat("-", 50))
	if summary := filterSummary(f); summary != "" {
		for _, part := range strings.Split(summary, " | ") {
			c.printf("  %s\n", part)
		}
	} else {
		c.printf("  (sin filtros)\n")
	}
	c.printf("  orden: %s %s — %d por página\n", f.SortBy, f.SortOrder, f.PageSize)
}

// filterSummary describe los filtros activos en una línea, en el mismo
// formato que la cabecera del reporte PDF.
func filterSummary(f movements.FilterCriteria) string {
	var parts []string
	if !f.StartDate.IsZero() {
		parts = append(parts, fmt.Sprintf("fechas %s a %s",
			f.StartDate.Format("2006-01-02"), f.EndDate.Format("2006-01-02")))
	}
	if f.MovementType != "" {
		parts = append(parts, "tipo "+typeLabel(f.MovementType))
	}
	if f.ProductID != "" {
		parts = append(parts, "producto "+f.ProductID)
	}
	if f.Reason != "" {
		parts = append(parts, fmt.Sprintf("motivo %q", f.Reason))
	}
	if f.CreatedBy != "" {
		parts = append(parts, "usuario "+f.CreatedBy)
	}
	if f.ReferenceNumber != "" {
		parts = append(parts, "referencia "+f.ReferenceNumber)
	}
	if f.MinQuantity > 0 || f.MaxQuantity > 0 {
		parts = append(parts, fmt.Sprintf("cantidad %d–%d", f.MinQuantity, f.MaxQuantity))
	}
	return strings.Join(parts, " | ")
}

// ──────────────────────────────────────────────────────────────────────────────
// Estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) printStats() {
	if c.history.Loading() {
		c.printf("El historial todavía está cargando.\n")
		return
	}
	st := c.history.Statistics()

	c.printf("\n%s\n", strings.Repeat("=", 64))
	c.printf("  ESTADÍSTICAS — página actual\n")
	c.printf("%s\n", strings.Repeat("=", 64))
	c.printf("  Movimientos : %d  (%d entradas, %d salidas)\n", st.TotalCount, st.InCount, st.OutCount)
	c.printf("  Unidades    : +%d / -%d  (balance neto %+d)\n", st.InQuantity, st.OutQuantity, st.NetBalance)
	c.printf("  Valor       : entradas $%s — salidas $%s\n", st.InValue.StringFixed(2), st.OutValue.StringFixed(2))
	if st.LargestIn != nil {
		c.printf("  Mayor entrada: %d × %s (%s)\n",
			st.LargestIn.Quantity, st.LargestIn.ProductName, st.LargestIn.CreatedAt.Format("2006-01-02"))
	}
	if st.LargestOut != nil {
		c.printf("  Mayor salida : %d × %s (%s)\n",
			st.LargestOut.Quantity, st.LargestOut.ProductName, st.LargestOut.CreatedAt.Format("2006-01-02"))
	}

	c.printf("%s\n", strings.Repeat("-", 64))
	c.printf("  %-12s %10s %10s\n", "DÍA", "ENTRADAS", "SALIDAS")
	c.printf("%s\n", strings.Repeat("-", 64))
	for _, d := range st.Days {
		c.printf("  %-12s %10d %10d\n", d.Date.Format("2006-01-02"), d.InQuantity, d.OutQuantity)
	}
	c.printf("%s\n", strings.Repeat("=", 64))
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) printProducts(term string) {
	c.waitCatalog()
	if !c.catalog.Ready() {
		if err := c.catalog.Err(); err != nil {
			c.printf("%s\n", errorMessage(err))
			return
		}
		c.printf("El catálogo todavía está cargando.\n")
		return
	}

	list := c.catalog.All()
	if term != "" {
		list = c.catalog.Search(term)
	}

	c.printf("\n%s\n", strings.Repeat("=", 78))
	if term != "" {
		c.printf("  PRODUCTOS — búsqueda %q\n", term)
	} else {
		c.printf("  PRODUCTOS ACTIVOS\n")
	}
	c.printf("%s\n", strings.Repeat("=", 78))
	if len(list) == 0 {
		c.printf("  Sin resultados.\n")
		c.printf("%s\n", strings.Repeat("=", 78))
		return
	}
	c.printf("  %-10s %-28s %-6s %10s %7s %5s %5s\n", "SKU", "NOMBRE", "UNIDAD", "PRECIO", "STOCK", "MÍN", "MÁX")
	c.printf("%s\n", strings.Repeat("-", 78))
	for _, p := range list {
		maxLabel := "-"
		if p.HasMax() {
			maxLabel = fmt.Sprintf("%d", p.MaxStock)
		}
		c.printf("  %-10s %-28s %-6s %10s %7d %5d %5s\n",
			p.SKU, truncate(p.Name, 28), p.Unit, p.Price.StringFixed(2), p.Stock, p.MinStock, maxLabel)
	}
	c.printf("%s\n", strings.Repeat("=", 78))
}

// ──────────────────────────────────────────────────────────────────────────────
// Detalle, sesión y ayuda
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) printMovementDetail(m entity.Movement) {
	c.printf("\n%s\n", strings.Repeat("-", 60))
	c.printf("  Movimiento : %s\n", m.ID)
	c.printf("  Fecha      : %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
	c.printf("  Producto   : %s (%s)\n", m.ProductName, m.ProductSKU)
	c.printf("  Tipo       : %s — %d %s\n", typeLabel(m.Type), m.Quantity, m.ProductUnit)
	c.printf("  Stock      : %d → %d\n", m.StockBefore, m.StockAfter)
	c.printf("  Motivo     : %s\n", m.Reason)
	if m.ReferenceNumber != "" {
		c.printf("  Referencia : %s\n", m.ReferenceNumber)
	}
	if m.Notes != "" {
		c.printf("  Notas      : %s\n", m.Notes)
	}
	c.printf("  Registrado : %s\n", m.CreatedByName)
	c.printf("%s\n", strings.Repeat("-", 60))
}

func (c *Console) printProjection(pr inventory.StockProjection) {
	switch pr.Outcome {
	case inventory.OutcomeInsufficientStock:
		c.printf("  ✗ Stock insuficiente: hay %d y se piden %d. El registro queda bloqueado.\n",
			pr.Current, pr.Quantity)
	case inventory.OutcomeBelowMinimum:
		c.printf("  ⚠ Stock proyectado: %d → %d (quedará por debajo del mínimo).\n",
			pr.Current, pr.Projected)
	case inventory.OutcomeAboveMaximum:
		c.printf("  ⚠ Stock proyectado: %d → %d (superará el máximo configurado).\n",
			pr.Current, pr.Projected)
	default:
		c.printf("  ✓ Stock proyectado: %d → %d\n", pr.Current, pr.Projected)
	}
}

func (c *Console) printWhoami() {
	if c.session.State() == session.StateAuthenticated {
		u := c.session.User()
		c.printf("Sesión: %s <%s> (%s)\n", u.Name, u.Email, u.Role)
		return
	}
	c.printf("Sesión: anónima — use /login para autenticarse.\n")
}

func (c *Console) printHelp() {
	c.printf("\nCOMANDOS\n")
	c.printf("%s\n", strings.Repeat("=", 70))
	c.printf("\n  HISTORIAL\n")
	c.printf("  /page <n>            Ir a la página n\n")
	c.printf("  /next  /prev         Página siguiente / anterior\n")
	c.printf("  /pagesize <n>        Registros por página (1–100)\n")
	c.printf("  /refresh             Recargar la página actual\n")
	c.printf("\n  FILTROS  (valor \"off\" limpia el campo; todo cambio vuelve a la página 1)\n")
	c.printf("  /filter                       Mostrar filtros activos\n")
	c.printf("  /filter type in|out           Tipo de movimiento\n")
	c.printf("  /filter product <id|sku>      Producto\n")
	c.printf("  /filter dates <desde> <hasta> Rango de fechas (YYYY-MM-DD)\n")
	c.printf("  /filter qty <min> <max>       Rango de cantidades (0 = sin límite)\n")
	c.printf("  /filter user <id>             Usuario que registró\n")
	c.printf("  /filter ref <texto>           Número de referencia\n")
	c.printf("  /filter reason <texto>        Motivo (texto libre, con debounce)\n")
	c.printf("  /preset today|week|month      Rango de fechas predefinido\n")
	c.printf("  /sort <campo> [asc|desc]      created_at | quantity | product_name\n")
	c.printf("  /reset                        Volver a los filtros por defecto\n")
	c.printf("\n  OPERACIONES\n")
	c.printf("  /stats               Estadísticas de la página actual\n")
	c.printf("  /products [término]  Catálogo con búsqueda local\n")
	c.printf("  /new                 Registrar un movimiento (asistente)\n")
	c.printf("  /delete <id>         Eliminar un movimiento (con confirmación)\n")
	c.printf("  /export csv|xml|pdf  Exportar la página actual\n")
	c.printf("\n  SESIÓN\n")
	c.printf("  /login  /logout  /whoami\n")
	c.printf("  /help   /exit\n")
	c.printf("%s\n", strings.Repeat("=", 70))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auxiliares
// ──────────────────────────────────────────────────────────────────────────────

func typeLabel(t string) string {
	switch t {
	case entity.MovementTypeIn:
		return "ENTRADA"
	case entity.MovementTypeOut:
		return "SALIDA"
	}
	return strings.ToUpper(t)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// errorMessage traduce los centinelas de dominio a mensajes para la tabla.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return "No se pudo contactar el servidor. Verifique su conexión."
	case errors.Is(err, domain.ErrUnauthorized):
		return "La sesión expiró o no está autenticada. Use /login."
	default:
		return fmt.Sprintf("Error consultando el historial: %v", err)
	}
}
