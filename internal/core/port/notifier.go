package port

import "context"

// SessionEvent - событие, которое отправляется подписчикам одной сессии.
type SessionEvent struct {
	SessionID string `json:"-"`
	Type      string `json:"type"`
	Data      any    `json:"data"`
}

// NotifierPort - контракт для отправки событий в реальном времени.
type NotifierPort interface {
	Notify(ctx context.Context, event SessionEvent)
}
