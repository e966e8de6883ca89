package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"property-explorer/internal/adapters/backend_client"
	"property-explorer/internal/adapters/filestore"
	"property-explorer/internal/adapters/geoip"
	logger_adapter "property-explorer/internal/adapters/logger"
	"property-explorer/internal/adapters/memstore"
	"property-explorer/internal/adapters/notifier"
	postgres_adapter "property-explorer/internal/adapters/postgres"
	rabbitmq_adapter "property-explorer/internal/adapters/rabbitmq"
	redis_adapter "property-explorer/internal/adapters/redis"
	"property-explorer/internal/adapters/rest"
	"property-explorer/internal/adapters/scheduler"
	"property-explorer/internal/adapters/sqlite"
	"property-explorer/internal/configs"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/contracts"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"property-explorer/internal/core/usecase"
	"property-explorer/pkg/fluentlogger"
	"property-explorer/pkg/postgres"
	"property-explorer/pkg/rabbitmq/rabbitmq_common"
	"property-explorer/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jonboulle/clockwork"
)

// redisKeyTTL - срок жизни ключей в Redis, чтобы брошенные сессии не копились вечно.
const redisKeyTTL = 7 * 24 * time.Hour

// App – структура приложения
type App struct {
	config *configs.AppConfig
	logger port.LoggerPort

	appCtx    context.Context
	cancelApp context.CancelFunc

	store        port.KeyValueStore
	connManager  *rabbitmq_common.ConnectionManager
	producer     *rabbitmq_producer.Publisher
	fluentClient *fluent.Fluent

	registry  *usecase.ExplorerRegistry
	notifier  *notifier.SSENotifier
	scheduler *scheduler.MaintenanceScheduler
	server    *rest.Server
}

// NewApp - точка сборки: здесь создаются и связываются все зависимости.
func NewApp(envPath ...string) (*App, error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}
	app.appCtx, app.cancelApp = context.WithCancel(context.Background())

	// --- 1. ЛОГГЕРЫ ---
	if err := app.initLoggers(); err != nil {
		app.cancelApp()
		return nil, err
	}
	appLogger := app.logger.WithFields(port.Fields{"component": "app"})
	app.appCtx = contextkeys.ContextWithLogger(app.appCtx, app.logger)

	// --- 2. ХРАНИЛИЩЕ И ИСХОДЯЩИЕ АДАПТЕРЫ ---
	store, err := openStore(app.appCtx, appConfig.Cache)
	if err != nil {
		appLogger.Error("Failed to open key-value store", err, port.Fields{"backend": appConfig.Cache.Backend})
		app.close()
		return nil, fmt.Errorf("failed to open %s store: %w", appConfig.Cache.Backend, err)
	}
	app.store = store
	appLogger.Info("Key-value store opened", port.Fields{"backend": appConfig.Cache.Backend})

	normalizer := errnorm.New(appConfig.Backend.Locale)
	tokens := usecase.NewSessionTokenStore(store)

	apiClient, err := backend_client.NewClient(appConfig.Backend.URL, appConfig.Backend.Timeout, tokens, normalizer)
	if err != nil {
		appLogger.Error("Failed to create backend client", err, nil)
		app.close()
		return nil, err
	}

	geoLocator := geoip.NewIPAPILocator(appConfig.GeoIP.URL, &http.Client{Timeout: usecase.DefaultLocateTimeout})

	formValidator, err := contracts.NewFormValidator()
	if err != nil {
		appLogger.Error("Failed to compile form schemas", err, nil)
		app.close()
		return nil, err
	}

	var publisher port.SearchEventPublisherPort
	if appConfig.RabbitMQ.Enabled {
		searchPublisher, err := app.initSearchPublisher()
		if err != nil {
			appLogger.Error("Failed to initialize search event publisher", err, nil)
			app.close()
			return nil, err
		}
		publisher = searchPublisher
		appLogger.Info("Search event publisher initialized", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
	}

	app.notifier = notifier.NewSSENotifier(app.logger)

	// --- 3. USE CASES ---
	cache := usecase.NewQueryCache(store, clockwork.NewRealClock(), appConfig.Cache.TTL)
	app.registry = usecase.NewExplorerRegistry(app.appCtx, usecase.RegistryDeps{
		API:        apiClient,
		Cache:      cache,
		Notifier:   app.notifier,
		Publisher:  publisher,
		Normalizer: normalizer,
		Config: usecase.OrchestratorConfig{
			DebounceWindow:   appConfig.Explorer.DebounceWindow,
			LoadMoreInterval: appConfig.Explorer.LoadMoreInterval,
			LoadMoreLimit:    appConfig.Explorer.LoadMoreLimit,
			LoadMoreTimeout:  appConfig.Explorer.LoadMoreTimeout,
		},
	})

	checker := usecase.NewFormChecker(formValidator, normalizer)

	handlers := rest.NewHandlers(rest.HandlerDeps{
		Explorers:  app.registry,
		Events:     app.notifier,
		MapView:    usecase.NewMapViewportUseCase(store, geoLocator, normalizer),
		Properties: usecase.NewPropertiesUseCase(apiClient),
		Bookmarks:  usecase.NewBookmarksUseCase(apiClient, normalizer),
		Likes:      usecase.NewLikesUseCase(apiClient),
		Categories: usecase.NewCategoriesUseCase(apiClient),
		Messages:   usecase.NewMessagesUseCase(apiClient, checker, normalizer, app.registry),
		Users:      usecase.NewUsersUseCase(apiClient),
		Auth:       usecase.NewAuthUseCase(apiClient, tokens, checker, normalizer),
		Contact:    usecase.NewSubmitContactUseCase(apiClient, checker, normalizer, app.registry),
		Normalizer: normalizer,
	})
	appLogger.Info("All use cases initialized", nil)

	// --- 4. ВХОДЯЩИЕ АДАПТЕРЫ ---
	app.scheduler = scheduler.NewMaintenanceScheduler(
		appConfig.Explorer.MaintenanceSchedule,
		cache,
		app.registry,
		appConfig.Explorer.SessionIdleTimeout,
		app.logger,
	)

	app.server = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.HTTP.Port,
		AllowedOrigins: appConfig.HTTP.AllowedOrigins,
		BaseContext:    app.appCtx,
	}, handlers, app.logger)

	return app, nil
}

func (a *App) initLoggers() error {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.IsJSON,
		UseColor: !cfg.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		client, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(client, parseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			client.Close()
			return err
		}
		a.fluentClient = client
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return fmt.Errorf("failed to create multi-logger: %w", err)
	}

	a.logger = multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return nil
}

func (a *App) initSearchPublisher() (port.SearchEventPublisherPort, error) {
	cfg := a.config.RabbitMQ

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(a.logger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewManager(rabbitmq_common.Config{URL: cfg.URL}, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.URL},
		ExchangeName:             cfg.Exchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.logger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.producer = producer

	return rabbitmq_adapter.NewSearchEventPublisher(producer, cfg.RoutingKey)
}

// openStore выбирает хранилище по CACHE_BACKEND.
func openStore(ctx context.Context, cfg configs.CacheConfig) (port.KeyValueStore, error) {
	switch cfg.Backend {
	case configs.CacheBackendFile:
		return filestore.Open(cfg.FilePath)
	case configs.CacheBackendSQLite:
		return sqlite.OpenKVStore(cfg.SQLitePath)
	case configs.CacheBackendPostgres:
		pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		store, err := postgres_adapter.NewPostgresKVStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case configs.CacheBackendRedis:
		client, err := redis_adapter.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return redis_adapter.NewRedisKVStore(client, "property-explorer:", redisKeyTTL), nil
	default:
		return memstore.NewKVStore(), nil
	}
}

// Run запускает сервер и планировщик и ждет сигнала на завершение.
func (a *App) Run() error {
	defer a.close()

	a.logger.Info("Application is starting...", nil)

	if err := a.scheduler.Start(a.appCtx); err != nil {
		a.logger.Error("Failed to start maintenance scheduler", err, nil)
		return err
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- a.server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		if err != nil {
			a.logger.Error("HTTP server failed, shutting down", err, nil)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// SSE-соединения держат Shutdown, их закрывает отмена базового контекста
	a.cancelApp()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping HTTP server", err, nil)
	}
	a.scheduler.Stop()

	return runErr
}

// close освобождает ресурсы в обратном порядке. Безопасен для частично собранного App.
func (a *App) close() {
	if a.cancelApp != nil {
		a.cancelApp()
	}
	if a.registry != nil {
		a.registry.CloseAll()
	}
	if a.notifier != nil {
		a.notifier.Stop()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Error closing key-value store", err, nil)
		}
	}
	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
