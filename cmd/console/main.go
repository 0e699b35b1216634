package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/Inventario-console/internal/application/movements"
	"github.com/jhoicas/Inventario-console/internal/application/products"
	"github.com/jhoicas/Inventario-console/internal/application/session"
	"github.com/jhoicas/Inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/Inventario-console/internal/interfaces/console"
	"github.com/jhoicas/Inventario-console/pkg/config"
	"github.com/jhoicas/Inventario-console/pkg/inflight"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

func main() {
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// El log va a stderr: stdout queda reservado para las tablas del REPL.
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("api", cfg.API.BaseURL).
		Msg("iniciando consola de inventario")

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), log)

	sess := session.New(client, log)
	client.SetTokenSource(sess)

	ctx := context.Background()

	// Restauración silenciosa con el token inyectado; si además hay
	// credenciales configuradas y la sesión quedó anónima, login directo.
	sess.Init(ctx, cfg.API.Token)
	if sess.State() != session.StateAuthenticated && cfg.API.Email != "" {
		if err := sess.Login(ctx, cfg.API.Email, cfg.API.Password); err != nil {
			log.Warn().Err(err).Msg("login no interactivo fallido")
		}
	}

	guard := inflight.New()
	history := movements.NewHistoryStore(client, guard, log, movements.HistoryConfig{
		PageSize:        cfg.Console.PageSize,
		StatsWindowDays: cfg.Console.StatsWindowDays,
	})

	catalogGuard := inflight.New()
	catalog := products.NewCatalog(client, catalogGuard, log)

	register := movements.NewRegisterMovementUseCase(client, history, catalog, log)

	// Montaje: historial y catálogo se cargan en paralelo.
	history.Load()
	catalog.Load()

	repl := console.New(console.Deps{
		Session:   sess,
		History:   history,
		Catalog:   catalog,
		Register:  register,
		Log:       log,
		ExportDir: cfg.Console.ExportDir,
	}, os.Stdin, os.Stdout)

	runErr := repl.Run(ctx)

	// Desmontaje en orden: primero se cancelan las consultas en vuelo,
	// después se descarta el estado derivado de la sesión.
	history.Close()
	catalog.Close()
	sess.Teardown()

	if runErr != nil {
		log.Error().Err(runErr).Msg("la consola terminó con error")
		os.Exit(1)
	}
	log.Info().Dur("uptime", time.Since(start)).Msg("consola detenida")
}
