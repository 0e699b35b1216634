package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	Console ConsoleConfig
	Stub    StubConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig configuración del backend de inventario que consume el cliente.
type APIConfig struct {
	BaseURL        string // ej. http://localhost:8080
	TimeoutSeconds int    // timeout fijo por petición
	Token          string // token inyectado para restauración silenciosa (opcional)
	Email          string // login no interactivo (opcional)
	Password       string
}

// Timeout devuelve el timeout por petición como duración.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConsoleConfig preferencias de la consola interactiva.
type ConsoleConfig struct {
	PageSize        int    // tamaño de página por defecto para el historial
	StatsWindowDays int    // ventana de los buckets por día del dashboard
	ExportDir       string // directorio de salida para /export
}

// StubConfig configuración del backend stub en memoria (cmd/stubapi).
type StubConfig struct {
	Host       string
	Port       int
	JWTSecret  string
	JWTIssuer  string
	ExpMinutes int
	Seed       bool // cargar datos de demostración al arrancar
	AllowDelay bool // honrar ?delay_ms= para ejercitar cancelaciones
}

// Addr devuelve la dirección de escucha (host:port).
func (c StubConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, PAGE_SIZE, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// Bind de variables de entorno (Viper las lee automáticamente si AutomaticEnv está activo)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-console"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:        getString(v, "API_BASE_URL", "http://localhost:8080"),
			TimeoutSeconds: getInt(v, "API_TIMEOUT_SECONDS", 10),
			Token:          getString(v, "API_TOKEN", ""),
			Email:          getString(v, "API_EMAIL", ""),
			Password:       getString(v, "API_PASSWORD", ""),
		},
		Console: ConsoleConfig{
			PageSize:        getInt(v, "PAGE_SIZE", 20),
			StatsWindowDays: getInt(v, "STATS_WINDOW_DAYS", 7),
			ExportDir:       getString(v, "EXPORT_DIR", "."),
		},
		Stub: StubConfig{
			Host:       getString(v, "STUB_HTTP_HOST", "0.0.0.0"),
			Port:       getInt(v, "STUB_HTTP_PORT", 8080),
			JWTSecret:  getString(v, "STUB_JWT_SECRET", "stub-secret-solo-desarrollo"),
			JWTIssuer:  getString(v, "STUB_JWT_ISSUER", "inventario-stub"),
			ExpMinutes: getInt(v, "STUB_JWT_EXPIRATION_MINUTES", 480),
			Seed:       getBool(v, "STUB_SEED", true),
			AllowDelay: getBool(v, "STUB_ALLOW_DELAY", false),
		},
	}

	if cfg.API.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config: API_TIMEOUT_SECONDS debe ser positivo")
	}
	if cfg.Console.PageSize <= 0 {
		return nil, fmt.Errorf("config: PAGE_SIZE debe ser positivo")
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
