package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// runWizard conduce el asistente de registro de movimientos: selección de
// producto con búsqueda local, tipo, cantidad con previsualización optimista
// del stock, motivo y confirmación. Escribir "cancel" en cualquier paso
// aborta sin tocar la red.
func (c *Console) runWizard(ctx context.Context) {
	c.waitCatalog()
	if !c.catalog.Ready() {
		if err := c.catalog.Err(); err != nil {
			c.printf("No hay catálogo disponible: %s\n", errorMessage(err))
			return
		}
		c.printf("El catálogo todavía está cargando; intente de nuevo en un momento.\n")
		return
	}

	c.printf("\nREGISTRAR MOVIMIENTO  (escriba \"cancel\" para abortar)\n")
	c.printf("%s\n", strings.Repeat("-", 60))

	product, ok := c.askProduct()
	if !ok {
		c.printf("Registro cancelado.\n")
		return
	}
	c.printf("  Producto: %s (%s) — stock actual %d %s\n",
		product.Name, product.SKU, product.Stock, product.Unit)

	mvType, ok := c.askType()
	if !ok {
		c.printf("Registro cancelado.\n")
		return
	}

	in := movements.RegisterInput{Product: product, Type: mvType}

	quantity, ok := c.askQuantity(&in)
	if !ok {
		c.printf("Registro cancelado.\n")
		return
	}
	in.Quantity = quantity

	reason, ok := c.askLine("Motivo: ", true)
	if !ok {
		c.printf("Registro cancelado.\n")
		return
	}
	in.Reason = reason

	if in.Notes, ok = c.askLine("Notas (opcional): ", false); !ok {
		c.printf("Registro cancelado.\n")
		return
	}
	if in.ReferenceNumber, ok = c.askLine("Referencia (opcional): ", false); !ok {
		c.printf("Registro cancelado.\n")
		return
	}

	// Resumen con la proyección final antes de confirmar.
	c.printf("\n%s\n", strings.Repeat("-", 60))
	c.printf("  %s de %d %s de %s\n", typeLabel(in.Type), in.Quantity, product.Unit, product.Name)
	c.printf("  Motivo: %s\n", in.Reason)
	c.printProjection(c.register.Preview(in))
	c.printf("%s\n", strings.Repeat("-", 60))

	c.printf("¿Confirmar el registro? (s/n): ")
	choice, _ := c.in.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "s" && choice != "si" && choice != "y" {
		c.printf("Registro cancelado.\n")
		return
	}

	mv, pr, err := c.register.Register(ctx, in)
	if err != nil {
		c.printf("No se pudo registrar: %v\n", err)
		if pr.Outcome.Blocking() {
			c.printProjection(pr)
		}
		return
	}

	c.printf("Movimiento registrado.\n")
	c.printMovementDetail(*mv)
	c.settleAndPrint()
}

// askProduct pide un término de búsqueda y deja elegir por número entre las
// coincidencias del catálogo local.
func (c *Console) askProduct() (entity.Product, bool) {
	for {
		term, ok := c.askLine("Buscar producto (nombre o SKU): ", true)
		if !ok {
			return entity.Product{}, false
		}

		matches := c.catalog.Search(term)
		if len(matches) == 0 {
			c.printf("  Sin coincidencias para %q.\n", term)
			continue
		}
		if len(matches) == 1 {
			return matches[0], true
		}

		for i, p := range matches {
			c.printf("  %d) %-10s %-28s stock %d %s\n", i+1, p.SKU, truncate(p.Name, 28), p.Stock, p.Unit)
		}
		raw, ok := c.askLine("Número del producto: ", true)
		if !ok {
			return entity.Product{}, false
		}
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 1 || idx > len(matches) {
			c.printf("  Selección inválida.\n")
			continue
		}
		return matches[idx-1], true
	}
}

func (c *Console) askType() (string, bool) {
	for {
		raw, ok := c.askLine("Tipo (in/out): ", true)
		if !ok {
			return "", false
		}
		t := strings.ToLower(raw)
		if entity.ValidMovementType(t) {
			return t, true
		}
		c.printf("  Tipo desconocido: %s\n", raw)
	}
}

// askQuantity lee la cantidad y muestra en vivo la proyección de stock.
// Las advertencias no bloquean; el stock insuficiente obliga a corregir.
func (c *Console) askQuantity(in *movements.RegisterInput) (int, bool) {
	for {
		raw, ok := c.askLine("Cantidad: ", true)
		if !ok {
			return 0, false
		}
		q, err := strconv.Atoi(raw)
		if err != nil || q <= 0 {
			c.printf("  La cantidad debe ser un entero positivo.\n")
			continue
		}

		probe := *in
		probe.Quantity = q
		pr := c.register.Preview(probe)
		c.printProjection(pr)
		if pr.Outcome.Blocking() {
			continue
		}
		return q, true
	}
}

// askLine lee una línea; required fuerza un valor no vacío. Devuelve
// ok=false cuando el usuario cancela o la entrada llega a EOF.
func (c *Console) askLine(prompt string, required bool) (string, bool) {
	for {
		c.printf("%s", prompt)
		raw, err := c.in.ReadString('\n')
		value := strings.TrimSpace(raw)
		if strings.EqualFold(value, "cancel") {
			return "", false
		}
		if value == "" && err != nil {
			return "", false
		}
		if value == "" && required {
			c.printf("  Este campo es obligatorio.\n")
			continue
		}
		return value, true
	}
}
