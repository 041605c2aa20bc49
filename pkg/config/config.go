package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	// Zonas horarias embebidas: DASHBOARD_TIMEZONE no depende del tzdata del host.
	_ "time/tzdata"
)

// Drivers de almacenamiento soportados.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	DB        DBConfig
	HTTP      HTTPConfig
	Sales     SalesConfig
	Dashboard DashboardConfig
	Redis     RedisConfig
	Metrics   MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// StorageConfig selecciona el backend del libro de ventas.
// "memory" mantiene todo en proceso (modo local / demo) y opcionalmente carga datos de ejemplo.
type StorageConfig struct {
	Driver     string
	MemorySeed bool
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SalesConfig límites del coordinador de ventas.
type SalesConfig struct {
	Timeout        time.Duration // plazo total de un intento de venta
	LockTimeout    time.Duration // lock_timeout dentro de la transacción
	MaxAttempts    int           // reintentos ante ErrConflict
	IdempotencyTTL time.Duration
}

// DashboardConfig zona horaria que define "hoy" en el panel.
type DashboardConfig struct {
	Timezone string
	Location *time.Location
}

// RedisConfig caché de idempotencia. Addr vacío = deshabilitado.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// MetricsConfig exposición Prometheus.
type MetricsConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, SALE_TIMEOUT_MS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "gelp-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getString(v, "STORAGE_DRIVER", StorageDriverPostgres)),
			MemorySeed: getBool(v, "MEMORY_SEED", true),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gelp_db"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3001),
		},
		Sales: SalesConfig{
			Timeout:        time.Duration(getInt(v, "SALE_TIMEOUT_MS", 5000)) * time.Millisecond,
			LockTimeout:    time.Duration(getInt(v, "SALE_LOCK_TIMEOUT_MS", 2000)) * time.Millisecond,
			MaxAttempts:    getInt(v, "SALE_MAX_ATTEMPTS", 3),
			IdempotencyTTL: time.Duration(getInt(v, "IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		},
		Dashboard: DashboardConfig{
			Timezone: getString(v, "DASHBOARD_TIMEZONE", "UTC"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER inválido: %q", c.Storage.Driver)
	}
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return fmt.Errorf("DASHBOARD_TIMEZONE inválida %q: %w", c.Dashboard.Timezone, err)
	}
	c.Dashboard.Location = loc
	if c.Sales.Timeout <= 0 {
		return fmt.Errorf("SALE_TIMEOUT_MS debe ser mayor que cero")
	}
	if c.Sales.MaxAttempts < 1 {
		c.Sales.MaxAttempts = 1
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch raw := v.Get(key).(type) {
	case int:
		return raw
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}
