package usecase

import (
	"context"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Explorer - состояние страницы поиска одной UI-сессии.
type Explorer struct {
	SessionID     string
	Filters       *FilterStore
	Orchestrator  *FetchOrchestrator
	Selection     *Selection
	Notifications *NotificationCenter

	lastSeen atomic.Int64
}

// State - снимок для UI.
func (e *Explorer) State() domain.ExplorerState {
	return e.Orchestrator.State()
}

func (e *Explorer) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *Explorer) idleSince() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Explorer) close() {
	e.Orchestrator.Close()
}

// RegistryDeps - общие для всех сессий зависимости.
type RegistryDeps struct {
	API        port.PropertyAPIPort
	Cache      *QueryCache
	Notifier   port.NotifierPort
	Publisher  port.SearchEventPublisherPort
	Normalizer *errnorm.Normalizer
	Clock      clockwork.Clock
	Config     OrchestratorConfig
}

// ExplorerRegistry создает Explorer при первом обращении сессии и убирает простаивающие.
// Кэш выборок у всех сессий общий.
type ExplorerRegistry struct {
	ctx  context.Context
	deps RegistryDeps

	mu       sync.Mutex
	sessions map[string]*Explorer
}

func NewExplorerRegistry(ctx context.Context, deps RegistryDeps) *ExplorerRegistry {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = errnorm.New("")
	}
	return &ExplorerRegistry{
		ctx:      ctx,
		deps:     deps,
		sessions: make(map[string]*Explorer),
	}
}

// Get возвращает Explorer сессии, создавая его и запуская первую выборку при необходимости.
func (r *ExplorerRegistry) Get(sessionID string) *Explorer {
	r.mu.Lock()
	e, ok := r.sessions[sessionID]
	if !ok {
		e = r.newExplorer(sessionID)
		r.sessions[sessionID] = e
	}
	e.touch(r.deps.Clock.Now())
	r.mu.Unlock()

	if !ok {
		e.Orchestrator.Start()
	}
	return e
}

// Lookup возвращает Explorer без создания.
func (r *ExplorerRegistry) Lookup(sessionID string) (*Explorer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sessionID]
	if ok {
		e.touch(r.deps.Clock.Now())
	}
	return e, ok
}

func (r *ExplorerRegistry) newExplorer(sessionID string) *Explorer {
	logger := contextkeys.LoggerFromContext(r.ctx).WithFields(port.Fields{"session_id": sessionID})
	ctx := contextkeys.ContextWithSessionID(contextkeys.ContextWithLogger(r.ctx, logger), sessionID)

	filters := NewFilterStore()
	selection := NewSelection(ctx, sessionID, r.deps.Notifier)
	notifications := NewNotificationCenter(ctx, sessionID, r.deps.Notifier, r.deps.Clock)

	orchestrator := NewFetchOrchestrator(ctx, OrchestratorDeps{
		SessionID:     sessionID,
		API:           r.deps.API,
		Cache:         r.deps.Cache,
		Filters:       filters,
		Selection:     selection,
		Notifications: notifications,
		Notifier:      r.deps.Notifier,
		Publisher:     r.deps.Publisher,
		Normalizer:    r.deps.Normalizer,
		Clock:         r.deps.Clock,
	}, r.deps.Config)

	logger.Info("Explorer session created", nil)

	return &Explorer{
		SessionID:     sessionID,
		Filters:       filters,
		Orchestrator:  orchestrator,
		Selection:     selection,
		Notifications: notifications,
	}
}

// Close завершает сессию. Возвращает false, если сессии не было.
func (r *ExplorerRegistry) Close(sessionID string) bool {
	r.mu.Lock()
	e, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		e.close()
	}
	return ok
}

// EvictIdle закрывает сессии, к которым не обращались дольше maxIdle.
func (r *ExplorerRegistry) EvictIdle(maxIdle time.Duration) int {
	now := r.deps.Clock.Now()

	r.mu.Lock()
	var idle []*Explorer
	for id, e := range r.sessions {
		if now.Sub(e.idleSince()) > maxIdle {
			idle = append(idle, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		e.close()
	}
	return len(idle)
}

func (r *ExplorerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll используется при остановке приложения.
func (r *ExplorerRegistry) CloseAll() {
	r.mu.Lock()
	all := make([]*Explorer, 0, len(r.sessions))
	for id, e := range r.sessions {
		all = append(all, e)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, e := range all {
		e.close()
	}
}

// Success показывает уведомление об успехе в открытой сессии из контекста.
func (r *ExplorerRegistry) Success(ctx context.Context, message string) {
	if e, ok := r.Lookup(contextkeys.SessionIDFromContext(ctx)); ok {
		e.Notifications.Success(message)
	}
}
