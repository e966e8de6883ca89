package usecase

import (
	"property-explorer/internal/core/domain"
	"sync"
)

// FilterObserver получает новое значение фильтров и его версию.
type FilterObserver func(filters domain.FilterCriteria, version uint64)

// FilterStore хранит текущие фильтры одной сессии. Каждая запись - полная замена
// и новый логический запрос, даже если поменялась только страница.
type FilterStore struct {
	mu        sync.RWMutex
	filters   domain.FilterCriteria
	version   uint64
	observers map[uint64]FilterObserver
	order     []uint64
	nextID    uint64

	// notifyMu сериализует оповещения, чтобы наблюдатели видели версии по порядку
	notifyMu sync.Mutex
}

func NewFilterStore() *FilterStore {
	return &FilterStore{observers: make(map[uint64]FilterObserver)}
}

// Filters возвращает копию текущих фильтров.
func (s *FilterStore) Filters() domain.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

func (s *FilterStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetFilters заменяет фильтры целиком и синхронно оповещает наблюдателей.
// Наблюдатели вызываются после того, как новое значение стало видимым.
func (s *FilterStore) SetFilters(next domain.FilterCriteria) uint64 {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.filters = next.Clone()
	s.version++
	version := s.version
	observers := make([]FilterObserver, 0, len(s.order))
	for _, id := range s.order {
		observers = append(observers, s.observers[id])
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next.Clone(), version)
	}
	return version
}

// Reset - то же, что SetFilters с пустым значением.
func (s *FilterStore) Reset() uint64 {
	return s.SetFilters(domain.FilterCriteria{})
}

// Subscribe добавляет наблюдателя. Возвращенная функция отписывает его.
func (s *FilterStore) Subscribe(fn FilterObserver) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			for i, oid := range s.order {
				if oid == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
