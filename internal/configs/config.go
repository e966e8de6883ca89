package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory   = "memory"
	CacheBackendFile     = "file"
	CacheBackendSQLite   = "sqlite"
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
)

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
}

// BackendConfig - REST API бэкенда объявлений.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
	// Locale - язык сообщений об ошибках: fa, en или ru
	Locale string
}

// CacheConfig - хранилище кэша выборок и состояния сессий.
type CacheConfig struct {
	Backend     string
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	TTL         time.Duration
}

type ExplorerConfig struct {
	DebounceWindow      time.Duration
	LoadMoreInterval    time.Duration
	LoadMoreLimit       int
	LoadMoreTimeout     time.Duration
	SessionIdleTimeout  time.Duration
	MaintenanceSchedule string
}

type GeoIPConfig struct {
	URL string
}

// RabbitMQConfig - публикация событий поиска. Выключено по умолчанию.
type RabbitMQConfig struct {
	Enabled    bool
	URL        string
	Exchange   string
	RoutingKey string
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	HTTP         HTTPConfig
	Backend      BackendConfig
	Cache        CacheConfig
	Explorer     ExplorerConfig
	GeoIP        GeoIPConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из .env и переменных окружения.
// Отсутствие .env не ошибка: в контейнере все приходит из окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "property-explorer")

	cfg.HTTP.Port = getEnvAsString("PORT", "8080")
	cfg.HTTP.AllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	cfg.Backend.URL = os.Getenv("BACKEND_API_URL")
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_API_URL environment variable is required")
	}
	cfg.Backend.Timeout = getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second)
	cfg.Backend.Locale = getEnvAsString("UI_LOCALE", "fa")

	cfg.Cache.Backend = strings.ToLower(getEnvAsString("CACHE_BACKEND", CacheBackendMemory))
	cfg.Cache.FilePath = getEnvAsString("CACHE_FILE_PATH", "./data/explorer-cache.json")
	cfg.Cache.SQLitePath = getEnvAsString("SQLITE_PATH", "./data/explorer.db")
	cfg.Cache.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Cache.RedisURL = os.Getenv("REDIS_URL")
	cfg.Cache.TTL = getEnvAsDuration("CACHE_TTL", 5*time.Minute)

	switch cfg.Cache.Backend {
	case CacheBackendMemory, CacheBackendFile, CacheBackendSQLite:
	case CacheBackendPostgres:
		if cfg.Cache.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for CACHE_BACKEND=postgres")
		}
	case CacheBackendRedis:
		if cfg.Cache.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required for CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.Cache.Backend)
	}

	cfg.Explorer.DebounceWindow = getEnvAsDuration("DEBOUNCE_WINDOW", 300*time.Millisecond)
	cfg.Explorer.LoadMoreInterval = getEnvAsDuration("LOAD_MORE_INTERVAL", 1500*time.Millisecond)
	cfg.Explorer.LoadMoreLimit = getEnvAsInt("LOAD_MORE_LIMIT", 50)
	cfg.Explorer.LoadMoreTimeout = getEnvAsDuration("LOAD_MORE_TIMEOUT", 10*time.Second)
	cfg.Explorer.SessionIdleTimeout = getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	cfg.Explorer.MaintenanceSchedule = getEnvAsString("MAINTENANCE_SCHEDULE", "@every 5m")

	cfg.GeoIP.URL = getEnvAsString("GEOIP_URL", "https://ipapi.co")

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.Exchange = getEnvAsString("SEARCH_EVENTS_EXCHANGE", "explorer_exchange")
		cfg.RabbitMQ.RoutingKey = getEnvAsString("SEARCH_EVENTS_ROUTING_KEY", "explorer.search.performed")
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt логирует и возвращает значение по умолчанию, если переменная не число
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration принимает "300ms", "5m" и т.п.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d <= 0 {
		log.Printf("Warning: Environment variable %s (value: %s) is not a positive duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsSlice - список через запятую, пустые элементы отбрасываются
func getEnvAsSlice(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
