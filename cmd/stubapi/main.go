// stubapi levanta el backend de desarrollo en memoria: el mismo contrato
// HTTP que consume la consola, con datos de demostración y latencia
// artificial opcional (?delay_ms=) para ejercitar cancelaciones.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Inventario-console/internal/infrastructure/stubapi"
	"github.com/jhoicas/Inventario-console/pkg/config"
	"github.com/jhoicas/Inventario-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("addr", cfg.Stub.Addr()).
		Bool("seed", cfg.Stub.Seed).
		Bool("allow_delay", cfg.Stub.AllowDelay).
		Msg("iniciando backend stub")

	store := stubapi.NewStore()
	if cfg.Stub.Seed {
		if err := stubapi.Seed(store); err != nil {
			log.Fatal().Err(err).Msg("carga de datos de demostración")
		}
		log.Info().Msg("datos de demostración cargados (admin@demo.co / admin123)")
	}

	srv := stubapi.NewServer(store, stubapi.Config{
		JWTSecret:  cfg.Stub.JWTSecret,
		JWTIssuer:  cfg.Stub.JWTIssuer,
		ExpMinutes: cfg.Stub.ExpMinutes,
		AllowDelay: cfg.Stub.AllowDelay,
	}, log)
	app := srv.App()

	go func() {
		if err := app.Listen(cfg.Stub.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("backend stub detenido")
}
