package usecase

import (
	"context"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"sync"
)

// Selection - общий курсор выделения для списка и карты. Не хранит состояние выборки.
type Selection struct {
	mu      sync.RWMutex
	pointer domain.SelectionPointer

	ctx       context.Context
	sessionID string
	notifier  port.NotifierPort
}

func NewSelection(ctx context.Context, sessionID string, notifier port.NotifierPort) *Selection {
	return &Selection{ctx: ctx, sessionID: sessionID, notifier: notifier}
}

// Select выделяет объект. Предыдущее выделение снимается автоматически.
func (s *Selection) Select(id int64, origin domain.Origin) {
	s.mu.Lock()
	s.pointer = domain.SelectionPointer{PropertyID: &id, Origin: origin}
	s.mu.Unlock()

	action := domain.ActionFocusMap
	if origin == domain.OriginMap {
		action = domain.ActionScrollList
	}
	s.emit(domain.SelectionEvent{PropertyID: &id, Origin: origin, Action: action})
}

func (s *Selection) Clear() {
	s.mu.Lock()
	had := s.pointer.PropertyID != nil
	s.pointer = domain.SelectionPointer{}
	s.mu.Unlock()

	if had {
		s.emit(domain.SelectionEvent{Action: domain.ActionClear})
	}
}

func (s *Selection) Selected() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pointer.PropertyID == nil {
		return 0, false
	}
	return *s.pointer.PropertyID, true
}

// Pointer возвращает копию текущего указателя.
func (s *Selection) Pointer() domain.SelectionPointer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.pointer
	if p.PropertyID != nil {
		id := *p.PropertyID
		p.PropertyID = &id
	}
	return p
}

func (s *Selection) emit(ev domain.SelectionEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(s.ctx, port.SessionEvent{SessionID: s.sessionID, Type: domain.EventSelection, Data: ev})
}
