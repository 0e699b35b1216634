// Package console implementa el front end interactivo del historial de
// movimientos: un REPL de comandos slash que reexpresa las pantallas del
// cliente web (tabla con filtros activos, paginación, dashboard de
// estadísticas, asistente de registro y exportación de reportes).
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/application/session"
	"github.com/jhoicas/Inventario-console/internal/domain/entity"
	"github.com/jhoicas/Inventario-console/internal/infrastructure/export"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

// settleTimeout tope de espera para que un recargo en vuelo se asiente
// antes de volver a pintar la tabla.
const settleTimeout = 10 * time.Second

var errExit = errors.New("exit")

// Deps dependencias del REPL, inyectadas desde cmd/console.
type Deps struct {
	Session   *session.Session
	History   *movements.HistoryStore
	Catalog   *products.Catalog
	Register  *movements.RegisterMovementUseCase
	Log       *logger.Logger
	ExportDir string
}

// Console bucle interactivo sobre un par entrada/salida. La salida es un
// io.Writer para poder capturarla en tests; en producción es os.Stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	session   *session.Session
	history   *movements.HistoryStore
	catalog   *products.Catalog
	register  *movements.RegisterMovementUseCase
	log       *logger.Logger
	exportDir string
	now       func() time.Time
}

// New construye el REPL.
func New(deps Deps, in io.Reader, out io.Writer) *Console {
	return &Console{
		in:        bufio.NewReader(in),
		out:       out,
		session:   deps.Session,
		history:   deps.History,
		catalog:   deps.Catalog,
		register:  deps.Register,
		log:       deps.Log,
		exportDir: deps.ExportDir,
		now:       time.Now,
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Run ejecuta el bucle principal hasta /exit o EOF de la entrada.
func (c *Console) Run(ctx context.Context) error {
	c.printf("Invorya — Historial de movimientos de inventario\n")
	c.printWhoami()
	c.printf("Escriba /help para ver los comandos.\n")

	c.waitHistory()
	c.printHistory()

	for {
		c.printf("\n> ")
		input, err := c.in.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return nil // EOF
			}
			continue
		}

		if !strings.HasPrefix(input, "/") {
			c.printf("Los comandos empiezan con /  (use /help)\n")
			continue
		}

		if dispErr := c.dispatch(ctx, input); dispErr != nil {
			if errors.Is(dispErr, errExit) {
				c.printf("Hasta luego.\n")
				return nil
			}
			c.printf("Error: %v\n", dispErr)
		}
		if err != nil {
			return nil
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho de comandos
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) dispatch(ctx context.Context, input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]
	c.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("comando recibido")

	switch cmd {
	case "page":
		if len(args) < 1 {
			c.printf("Uso: /page <n>\n")
			return nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			c.printf("Número de página inválido: %s\n", args[0])
			return nil
		}
		c.goTo(n)

	case "next":
		c.goTo(c.history.Pagination().Page + 1)

	case "prev":
		c.goTo(c.history.Pagination().Page - 1)

	case "pagesize":
		if len(args) < 1 {
			c.printf("Uso: /pagesize <n>  (1–100)\n")
			return nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			c.printf("Tamaño inválido: %s\n", args[0])
			return nil
		}
		if err := c.history.SetPageSize(n); err != nil {
			return err
		}
		c.settleAndPrint()

	case "filter", "f":
		return c.handleFilter(args)

	case "preset":
		if len(args) < 1 {
			c.printf("Uso: /preset today|week|month\n")
			return nil
		}
		if err := c.history.ApplyPreset(movements.Preset(args[0])); err != nil {
			return err
		}
		c.settleAndPrint()

	case "sort":
		if len(args) < 1 {
			c.printf("Uso: /sort created_at|quantity|product_name [asc|desc]\n")
			return nil
		}
		order := movements.SortDesc
		if len(args) >= 2 {
			order = strings.ToLower(args[1])
		}
		if err := c.history.SetSort(strings.ToLower(args[0]), order); err != nil {
			return err
		}
		c.settleAndPrint()

	case "reset":
		c.history.Reset()
		c.settleAndPrint()

	case "refresh", "r":
		c.history.Refresh()
		c.settleAndPrint()

	case "stats":
		c.printStats()

	case "products", "p":
		c.printProducts(strings.Join(args, " "))

	case "new", "n":
		c.runWizard(ctx)

	case "delete", "del":
		if len(args) < 1 {
			c.printf("Uso: /delete <id>\n")
			return nil
		}
		return c.handleDelete(ctx, args[0])

	case "export":
		if len(args) < 1 {
			c.printf("Uso: /export csv|xml|pdf\n")
			return nil
		}
		return c.handleExport(strings.ToLower(args[0]))

	case "login":
		return c.handleLogin(ctx)

	case "logout":
		c.session.Logout()
		c.printf("Sesión cerrada.\n")

	case "whoami":
		c.printWhoami()

	case "help", "h":
		c.printHelp()

	case "exit", "quit", "q":
		return errExit

	default:
		c.printf("Comando desconocido: /%s  (use /help)\n", cmd)
	}
	return nil
}

// goTo navega a una página concreta; las páginas fuera de rango no generan
// petición alguna.
func (c *Console) goTo(n int) {
	if !c.history.GoToPage(n) {
		c.printf("Página fuera de rango: %d\n", n)
		return
	}
	c.settleAndPrint()
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtros
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) handleFilter(args []string) error {
	if len(args) == 0 {
		c.printFilters()
		return nil
	}
	field := strings.ToLower(args[0])
	rest := args[1:]

	switch field {
	case "type", "tipo":
		value := ""
		if len(rest) > 0 && rest[0] != "off" {
			value = strings.ToLower(rest[0])
		}
		if err := c.history.SetMovementType(value); err != nil {
			return err
		}

	case "product", "producto":
		value := ""
		if len(rest) > 0 && rest[0] != "off" {
			value = c.resolveProductID(rest[0])
			if value == "" {
				c.printf("Producto no encontrado: %s\n", rest[0])
				return nil
			}
		}
		if err := c.history.SetProduct(value); err != nil {
			return err
		}

	case "dates", "fechas":
		var start, end time.Time
		if len(rest) > 0 && rest[0] != "off" {
			if len(rest) < 2 {
				c.printf("Uso: /filter dates <YYYY-MM-DD> <YYYY-MM-DD> | off\n")
				return nil
			}
			var err error
			start, err = time.ParseInLocation("2006-01-02", rest[0], time.Local)
			if err != nil {
				c.printf("Fecha inicial inválida: %s\n", rest[0])
				return nil
			}
			end, err = time.ParseInLocation("2006-01-02", rest[1], time.Local)
			if err != nil {
				c.printf("Fecha final inválida: %s\n", rest[1])
				return nil
			}
			end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		}
		if err := c.history.SetDateRange(start, end); err != nil {
			return err
		}

	case "qty", "cantidad":
		min, max := 0, 0
		if len(rest) > 0 && rest[0] != "off" {
			if len(rest) < 2 {
				c.printf("Uso: /filter qty <min> <max> | off  (0 = sin límite)\n")
				return nil
			}
			var err error
			if min, err = strconv.Atoi(rest[0]); err != nil {
				c.printf("Mínimo inválido: %s\n", rest[0])
				return nil
			}
			if max, err = strconv.Atoi(rest[1]); err != nil {
				c.printf("Máximo inválido: %s\n", rest[1])
				return nil
			}
		}
		if err := c.history.SetQuantityBounds(min, max); err != nil {
			return err
		}

	case "user", "usuario":
		value := ""
		if len(rest) > 0 && rest[0] != "off" {
			value = rest[0]
		}
		if err := c.history.SetCreatedBy(value); err != nil {
			return err
		}

	case "ref", "referencia":
		value := ""
		if len(rest) > 0 && rest[0] != "off" {
			value = rest[0]
		}
		if err := c.history.SetReference(value); err != nil {
			return err
		}

	case "reason", "motivo":
		value := ""
		if len(rest) > 0 && rest[0] != "off" {
			value = strings.Join(rest, " ")
		}
		if value == c.history.Filters().Reason {
			c.printf("El filtro de motivo no cambió.\n")
			return nil
		}
		from := c.history.Version()
		c.history.SetReasonText(value)
		// El filtro de texto libre viaja con debounce: se espera al
		// recargo que dispara el valor asentado.
		c.waitVersionChange(from)
		c.printHistory()
		return nil

	default:
		c.printf("Campo desconocido: %s\n", field)
		c.printf("Campos: type product dates qty user ref reason  (valor \"off\" limpia el campo)\n")
		return nil
	}

	c.settleAndPrint()
	return nil
}

// resolveProductID acepta un ID exacto o un SKU del catálogo cargado.
func (c *Console) resolveProductID(ref string) string {
	if _, ok := c.catalog.Get(ref); ok {
		return ref
	}
	for _, p := range c.catalog.All() {
		if strings.EqualFold(p.SKU, ref) {
			return p.ID
		}
	}
	return ""
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado, exportación y sesión
// ──────────────────────────────────────────────────────────────────────────────

func (c *Console) handleDelete(ctx context.Context, ref string) error {
	mv, ok := c.findMovement(ref)
	if !ok {
		c.printf("No hay un movimiento %q en la página actual.\n", ref)
		return nil
	}
	c.printMovementDetail(mv)
	c.printf("¿Eliminar este movimiento? (s/n): ")
	choice, _ := c.in.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "s" && choice != "si" && choice != "y" {
		c.printf("Eliminación cancelada.\n")
		return nil
	}
	if err := c.register.Delete(ctx, mv.ID); err != nil {
		return err
	}
	c.printf("Movimiento eliminado.\n")
	c.settleAndPrint()
	return nil
}

func (c *Console) handleExport(format string) error {
	records := c.history.Records()
	if len(records) == 0 {
		c.printf("No hay registros cargados para exportar.\n")
		return nil
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "csv":
		data, err = export.CSV(records)
	case "xml":
		data, err = export.XML(records)
	case "pdf":
		data, err = export.PDF(records, c.history.Filters(), c.history.Statistics(), c.now())
	default:
		c.printf("Formato desconocido: %s  (csv, xml o pdf)\n", format)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error generando el reporte %s: %w", format, err)
	}

	if err := os.MkdirAll(c.exportDir, 0o755); err != nil {
		return fmt.Errorf("error creando el directorio de exportación: %w", err)
	}
	name := fmt.Sprintf("movimientos_%s.%s", c.now().Format("20060102_150405"), format)
	path := filepath.Join(c.exportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error escribiendo el reporte: %w", err)
	}
	c.printf("Reporte generado: %s (%d registros)\n", path, len(records))
	return nil
}

func (c *Console) handleLogin(ctx context.Context) error {
	c.printf("Email: ")
	email, _ := c.in.ReadString('\n')
	c.printf("Contraseña: ")
	password, _ := c.in.ReadString('\n')

	if err := c.session.Login(ctx, strings.TrimSpace(email), strings.TrimSpace(password)); err != nil {
		return err
	}
	c.printWhoami()

	// Con la sesión nueva se recargan catálogo e historial.
	c.catalog.Load()
	c.history.RefreshFirstPage()
	c.settleAndPrint()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Esperas sobre el estado asíncrono
// ──────────────────────────────────────────────────────────────────────────────

// waitHistory bloquea hasta que el historial se asiente (sin fetch en
// vuelo) o venza el tope. Los setters dejan el fetch marcado antes de
// retornar, así que no hay carrera entre mutar y esperar.
func (c *Console) waitHistory() {
	deadline := time.After(settleTimeout)
	for c.history.Loading() || c.history.Refreshing() {
		select {
		case <-c.history.Changes():
		case <-deadline:
			return
		}
	}
}

// waitVersionChange espera a que el set de registros cambie de versión y el
// fetch posterior se asiente; cubre los recargos diferidos por debounce.
func (c *Console) waitVersionChange(from uint64) {
	deadline := time.After(settleTimeout)
	for {
		if c.history.Version() != from && !c.history.Loading() && !c.history.Refreshing() {
			return
		}
		select {
		case <-c.history.Changes():
		case <-deadline:
			return
		}
	}
}

// waitCatalog espera la carga inicial del catálogo.
func (c *Console) waitCatalog() {
	deadline := time.After(settleTimeout)
	for c.catalog.Loading() {
		select {
		case <-c.catalog.Changes():
		case <-deadline:
			return
		}
	}
}

func (c *Console) settleAndPrint() {
	c.waitHistory()
	c.printHistory()
}

// findMovement localiza un registro de la página actual por ID completo o
// por prefijo (la tabla muestra IDs abreviados).
func (c *Console) findMovement(ref string) (entity.Movement, bool) {
	for _, m := range c.history.Records() {
		if m.ID == ref || strings.HasPrefix(m.ID, ref) {
			return m, true
		}
	}
	return entity.Movement{}, false
}
