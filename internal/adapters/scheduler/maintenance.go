package scheduler

import (
	"context"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/port"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@every 5m"

// CachePurger удаляет просроченные записи кэша выборок.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// SessionEvictor закрывает простаивающие сессии.
type SessionEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// MaintenanceScheduler периодически чистит кэш и закрывает простаивающие сессии.
type MaintenanceScheduler struct {
	cron     *cron.Cron
	spec     string
	cache    CachePurger
	sessions SessionEvictor
	maxIdle  time.Duration
}

func NewMaintenanceScheduler(spec string, cache CachePurger, sessions SessionEvictor, maxIdle time.Duration, logger port.LoggerPort) *MaintenanceScheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &MaintenanceScheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{logger: logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger}))),
		spec:     spec,
		cache:    cache,
		sessions: sessions,
		maxIdle:  maxIdle,
	}
}

// Start регистрирует задачу и запускает планировщик.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	contextkeys.LoggerFromContext(ctx).Info("Maintenance scheduler started", port.Fields{"schedule": s.spec})
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего прохода.
func (s *MaintenanceScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce выполняет один проход обслуживания.
func (s *MaintenanceScheduler) RunOnce(ctx context.Context) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "MaintenanceScheduler"})

	purged := 0
	if s.cache != nil {
		n, err := s.cache.Purge(ctx)
		if err != nil {
			logger.Warn("Cache purge failed", port.Fields{"error": err.Error()})
		}
		purged = n
	}

	evicted := 0
	if s.sessions != nil && s.maxIdle > 0 {
		evicted = s.sessions.EvictIdle(s.maxIdle)
	}

	logger.Info("Maintenance pass finished", port.Fields{"purged_entries": purged, "evicted_sessions": evicted})
}

// cronLogger направляет внутренние сообщения cron в LoggerPort.
type cronLogger struct {
	logger port.LoggerPort
}

func (l cronLogger) fields(keysAndValues []interface{}) port.Fields {
	fields := make(port.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug("cron: "+msg, l.fields(keysAndValues))
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error("cron: "+msg, err, l.fields(keysAndValues))
	}
}
