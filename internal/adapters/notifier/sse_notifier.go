package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/port"
	"sync"
)

// ClientChannel - канал, через который события уходят одному SSE-соединению (вкладке браузера)
type ClientChannel chan []byte

// структура для передачи в канал
type eventWithContext struct {
	ctx   context.Context
	event port.SessionEvent
}

// SSENotifier - реализация NotifierPort. События адресуются UI-сессии,
// у одной сессии может быть несколько открытых вкладок.
type SSENotifier struct {
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	// eventChan - внутренний канал, в который use case'ы бросают события
	eventChan chan eventWithContext
	done      chan struct{}
	stopOnce  sync.Once

	logger port.LoggerPort
}

var _ port.NotifierPort = (*SSENotifier)(nil)

// NewSSENotifier создает и запускает нотификатор
func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[string][]ClientChannel),
		eventChan: make(chan eventWithContext, 256),
		done:      make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}

	go n.dispatcher()

	return n
}

// Stop останавливает диспетчер. События после остановки отбрасываются.
func (n *SSENotifier) Stop() {
	n.stopOnce.Do(func() { close(n.done) })
}

func (n *SSENotifier) dispatcher() {
	n.logger.Debug("Notifier dispatcher started.", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped.", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg.ctx, pkg.event)
		}
	}
}

func (n *SSENotifier) dispatch(ctx context.Context, event port.SessionEvent) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SSENotifier.dispatcher",
		"event_type": event.Type,
		"session_id": event.SessionID,
	})

	payload, err := json.Marshal(event.Data)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}

	sseMessage := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels, found := n.clients[event.SessionID]
	if !found {
		return
	}
	for _, ch := range channels {
		// select с default, чтобы медленная вкладка не тормозила остальных
		select {
		case ch <- sseMessage:
		default:
			eventLogger.Warn("Client channel is full, skipping.", nil)
		}
	}
}

// Notify не блокирует вызывающего: use case'ы зовут его под своими мьютексами.
func (n *SSENotifier) Notify(ctx context.Context, event port.SessionEvent) {
	select {
	case <-n.done:
		return
	default:
	}

	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
	default:
		n.logger.Warn("Notifier buffer is full, event dropped.", port.Fields{"event_type": event.Type, "session_id": event.SessionID})
	}
}

// AddClient регистрирует новое SSE-соединение сессии
func (n *SSENotifier) AddClient(sessionID string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, 100)
	n.clients[sessionID] = append(n.clients[sessionID], ch)

	n.logger.Info("Client connected for session", port.Fields{
		"session_id":        sessionID,
		"total_connections": len(n.clients[sessionID]),
	})

	return ch
}

// RemoveClient вызывается из HTTP-хендлера, когда клиент закрывает соединение
func (n *SSENotifier) RemoveClient(sessionID string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[sessionID]
	if !found {
		return
	}
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, sessionID)
		n.logger.Debug("Last client disconnected for session.", port.Fields{"session_id": sessionID})
		return
	}
	n.clients[sessionID] = remaining
	n.logger.Info("Client disconnected for session.", port.Fields{
		"session_id":            sessionID,
		"remaining_connections": len(remaining),
	})
}

// ClientCount - число открытых соединений сессии.
func (n *SSENotifier) ClientCount(sessionID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[sessionID])
}
