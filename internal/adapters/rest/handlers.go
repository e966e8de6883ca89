package rest

import (
	"property-explorer/internal/adapters/notifier"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port/usecases_port"
	"property-explorer/internal/core/usecase"
	"time"
)

// ExplorerSessions - реестр сессий страницы поиска.
type ExplorerSessions interface {
	Get(sessionID string) *usecase.Explorer
	Close(sessionID string) bool
}

// EventStream - подписка SSE-соединений на события сессии.
type EventStream interface {
	AddClient(sessionID string) notifier.ClientChannel
	RemoveClient(sessionID string, ch notifier.ClientChannel)
}

// HandlerDeps - зависимости всех обработчиков.
type HandlerDeps struct {
	Explorers  ExplorerSessions
	Events     EventStream
	MapView    usecases_port.MapViewportUseCasePort
	Properties usecases_port.PropertiesUseCasePort
	Bookmarks  usecases_port.BookmarksUseCasePort
	Likes      usecases_port.LikesUseCasePort
	Categories usecases_port.CategoriesUseCasePort
	Messages   usecases_port.MessagesUseCasePort
	Users      usecases_port.UsersUseCasePort
	Auth       usecases_port.AuthUseCasePort
	Contact    usecases_port.SubmitContactUseCasePort
	Normalizer *errnorm.Normalizer

	// KeepAlive - период комментариев в SSE-потоке, по умолчанию 15s
	KeepAlive time.Duration
}

type Handlers struct {
	deps HandlerDeps
}

func NewHandlers(deps HandlerDeps) *Handlers {
	if deps.Normalizer == nil {
		deps.Normalizer = errnorm.New("")
	}
	if deps.KeepAlive <= 0 {
		deps.KeepAlive = 15 * time.Second
	}
	return &Handlers{deps: deps}
}
