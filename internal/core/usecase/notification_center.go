package usecase

import (
	"context"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultNotificationWindow   = 10 * time.Second
	DefaultNotificationCapacity = 50
)

// NotificationCenter выпускает уведомления для UI и подавляет повторы:
// одинаковые source+message не показываются чаще раза в окно.
type NotificationCenter struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	window   time.Duration
	capacity int
	seen     map[string]time.Time

	ctx       context.Context
	sessionID string
	notifier  port.NotifierPort
}

func NewNotificationCenter(ctx context.Context, sessionID string, notifier port.NotifierPort, clock clockwork.Clock) *NotificationCenter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &NotificationCenter{
		clock:     clock,
		window:    DefaultNotificationWindow,
		capacity:  DefaultNotificationCapacity,
		seen:      make(map[string]time.Time),
		ctx:       ctx,
		sessionID: sessionID,
		notifier:  notifier,
	}
}

func dedupKey(source, message string) string {
	if source == "" {
		source = "unknown"
	}
	return source + ":" + message
}

// Error показывает ошибку, если такая же не показывалась в течение окна.
// Возвращает false для подавленного дубликата.
func (c *NotificationCenter) Error(source, message string) bool {
	c.mu.Lock()
	now := c.clock.Now()
	c.cleanupLocked(now)

	key := dedupKey(source, message)
	if last, ok := c.seen[key]; ok && now.Sub(last) < c.window {
		c.mu.Unlock()
		return false
	}
	c.seen[key] = now
	c.mu.Unlock()

	c.emit(domain.Notification{Level: domain.LevelError, Source: source, Message: message, CreatedAt: now})
	return true
}

// Success показывает сообщение об успехе без дедупликации.
func (c *NotificationCenter) Success(message string) {
	c.emit(domain.Notification{Level: domain.LevelSuccess, Message: message, CreatedAt: c.clock.Now()})
}

// cleanupLocked удаляет просроченные ключи и самые старые сверх лимита.
func (c *NotificationCenter) cleanupLocked(now time.Time) {
	for k, ts := range c.seen {
		if now.Sub(ts) >= c.window {
			delete(c.seen, k)
		}
	}
	for len(c.seen) >= c.capacity {
		var oldestKey string
		var oldest time.Time
		for k, ts := range c.seen {
			if oldestKey == "" || ts.Before(oldest) {
				oldestKey, oldest = k, ts
			}
		}
		delete(c.seen, oldestKey)
	}
}

func (c *NotificationCenter) emit(n domain.Notification) {
	n.ID = uuid.NewString()
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(c.ctx, port.SessionEvent{SessionID: c.sessionID, Type: domain.EventNotification, Data: n})
}
