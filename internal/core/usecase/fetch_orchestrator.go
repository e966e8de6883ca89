package usecase

import (
	"context"
	"errors"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Значения по умолчанию для оркестратора выборки.
const (
	DefaultDebounceWindow   = 300 * time.Millisecond
	DefaultLoadMoreInterval = 1500 * time.Millisecond
	DefaultLoadMoreLimit    = 50
	DefaultLoadMoreTimeout  = 10 * time.Second
)

var (
	errLoadMoreTimeout    = errors.New("load more timed out")
	errLoadMoreSuperseded = errors.New("load more superseded by a new query")
	errOrchestratorClosed = errors.New("orchestrator closed")
)

type OrchestratorConfig struct {
	DebounceWindow   time.Duration
	LoadMoreInterval time.Duration
	LoadMoreLimit    int
	LoadMoreTimeout  time.Duration
}

func (c OrchestratorConfig) withDefaults() OrchestratorConfig {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = DefaultDebounceWindow
	}
	if c.LoadMoreInterval <= 0 {
		c.LoadMoreInterval = DefaultLoadMoreInterval
	}
	if c.LoadMoreLimit <= 0 {
		c.LoadMoreLimit = DefaultLoadMoreLimit
	}
	if c.LoadMoreTimeout <= 0 {
		c.LoadMoreTimeout = DefaultLoadMoreTimeout
	}
	return c
}

// OrchestratorDeps - зависимости оркестратора одной сессии.
type OrchestratorDeps struct {
	SessionID     string
	API           port.PropertyAPIPort
	Cache         *QueryCache
	Filters       *FilterStore
	Selection     *Selection
	Notifications *NotificationCenter
	Notifier      port.NotifierPort
	// Publisher может быть nil, тогда события поиска не публикуются
	Publisher  port.SearchEventPublisherPort
	Normalizer *errnorm.Normalizer
	Clock      clockwork.Clock
}

type dispatch struct {
	seq     uint64
	filters domain.FilterCriteria
}

type loadMoreCounters struct {
	count   int
	lastAt  time.Time
	loading bool
	cancel  context.CancelCauseFunc
}

// FetchOrchestrator превращает изменения фильтров в запросы к бэкенду:
// кэш, debounce, отбрасывание устаревших ответов и постраничная подгрузка.
// В каждый момент времени у сессии не больше одного запроса к бэкенду.
type FetchOrchestrator struct {
	deps OrchestratorDeps
	cfg  OrchestratorConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	seq         uint64
	current     domain.FilterCriteria
	version     uint64
	result      *domain.QueryResult
	fromCache   bool
	loading     bool
	inFlight    bool
	lastErr     *domain.APIError
	debounce    clockwork.Timer
	parked      *dispatch
	lm          loadMoreCounters
	closed      bool
	unsubscribe func()
}

// NewFetchOrchestrator подписывается на FilterStore. Первый запрос запускает Start.
func NewFetchOrchestrator(ctx context.Context, deps OrchestratorDeps, cfg OrchestratorConfig) *FetchOrchestrator {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = errnorm.New("")
	}

	runCtx, cancel := context.WithCancel(ctx)
	o := &FetchOrchestrator{
		deps:   deps,
		cfg:    cfg.withDefaults(),
		ctx:    runCtx,
		cancel: cancel,
	}
	o.unsubscribe = deps.Filters.Subscribe(o.onFiltersChanged)
	return o
}

// Start запускает выборку для текущих фильтров (первая загрузка страницы).
func (o *FetchOrchestrator) Start() {
	o.onFiltersChanged(o.deps.Filters.Filters(), o.deps.Filters.Version())
}

func (o *FetchOrchestrator) logger() port.LoggerPort {
	return contextkeys.LoggerFromContext(o.ctx).WithFields(port.Fields{"component": "FetchOrchestrator"})
}

// onFiltersChanged вызывается FilterStore синхронно для каждой записи фильтров.
func (o *FetchOrchestrator) onFiltersChanged(filters domain.FilterCriteria, version uint64) {
	// 1. Новый логический запрос: старые таймеры и счетчики больше не действуют
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.seq++
	seq := o.seq
	o.current = filters
	o.version = version
	o.lastErr = nil
	o.parked = nil
	o.stopDebounceLocked()
	o.resetLoadMoreLocked(errLoadMoreSuperseded)
	o.mu.Unlock()

	// 2. Кэш читаем без блокировки, хранилище может ходить в сеть
	cached, hit := o.deps.Cache.Get(o.ctx, filters)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || seq != o.seq {
		return
	}

	if hit {
		o.logger().Debug("Serving filters from cache", port.Fields{"seq": seq, "items": len(cached.Items)})
		o.result = &cached
		o.fromCache = true
		o.loading = false
		o.emitStateLocked()
		return
	}

	// 3. Промах: ждем паузу во вводе. Новое изменение перезапустит таймер
	o.loading = true
	o.debounce = o.deps.Clock.AfterFunc(o.cfg.DebounceWindow, func() {
		o.onDebounceElapsed(seq, filters)
	})
	o.emitStateLocked()
}

func (o *FetchOrchestrator) onDebounceElapsed(seq uint64, filters domain.FilterCriteria) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || seq != o.seq {
		return
	}
	o.debounce = nil

	if o.inFlight || o.lm.loading {
		// запрос уже идет: запомним только самый новый и запустим после него
		o.parked = &dispatch{seq: seq, filters: filters}
		o.logger().Debug("Request in flight, parking dispatch", port.Fields{"seq": seq})
		return
	}
	o.startFetchLocked(seq, filters)
}

func (o *FetchOrchestrator) startFetchLocked(seq uint64, filters domain.FilterCriteria) {
	o.inFlight = true
	o.emitStateLocked()

	o.wg.Add(1)
	go o.runFetch(seq, filters)
}

func (o *FetchOrchestrator) requestContext(ctx context.Context) context.Context {
	return contextkeys.ContextWithTraceID(ctx, uuid.NewString())
}

func (o *FetchOrchestrator) runFetch(seq uint64, filters domain.FilterCriteria) {
	defer o.wg.Done()

	ctx := o.requestContext(o.ctx)
	logger := o.logger().WithFields(port.Fields{"seq": seq, "trace_id": contextkeys.TraceIDFromContext(ctx)})
	logger.Debug("Fetching properties", port.Fields{"filters": Canonicalize(filters)})

	result, err := o.deps.API.FilterProperties(ctx, filters)
	if err == nil {
		// результат верен для своих фильтров, даже если запрос уже устарел
		o.deps.Cache.Put(ctx, filters, result)
	}

	var publish *domain.SearchPerformedEvent

	o.mu.Lock()
	o.inFlight = false
	if o.closed {
		o.mu.Unlock()
		return
	}

	if seq != o.seq {
		logger.Debug("Discarding stale response", port.Fields{"current_seq": o.seq})
	} else if err != nil {
		apiErr := o.deps.Normalizer.Normalize(err)
		logger.Warn("Property fetch failed", port.Fields{"status": apiErr.Status, "kind": string(apiErr.Kind), "error": apiErr.Message})
		o.lastErr = apiErr
		o.loading = false
		o.raiseFetchErrorLocked(apiErr)
	} else {
		o.result = &result
		o.fromCache = false
		o.loading = false
		o.lastErr = nil
		o.lm = loadMoreCounters{}
		publish = o.searchEvent(filters, result, false)
	}

	o.dispatchParkedLocked()
	o.emitStateLocked()
	o.mu.Unlock()

	o.publish(ctx, publish)
}

// raiseFetchErrorLocked выбирает ключ источника уведомления по виду ошибки.
func (o *FetchOrchestrator) raiseFetchErrorLocked(apiErr *domain.APIError) {
	n := o.deps.Normalizer
	var source, text string
	switch {
	case apiErr.Status >= 500:
		source, text = domain.SourceFetch500, n.Text(errnorm.MsgFetchServer)
	case apiErr.Status == 404:
		source, text = domain.SourceFetch404, n.Text(errnorm.MsgFetchNoResults)
	case apiErr.Kind == domain.KindNetwork || apiErr.Kind == domain.KindTimeout:
		source, text = domain.SourceFetchNetwork, n.Text(errnorm.MsgFetchNetwork)
	default:
		source, text = domain.SourceFetchGeneral, n.Text(errnorm.MsgFetchGeneral, apiErr.Message)
	}
	if o.deps.Notifications != nil {
		o.deps.Notifications.Error(source, text)
	}
}

func (o *FetchOrchestrator) dispatchParkedLocked() {
	if o.parked == nil || o.inFlight || o.lm.loading {
		return
	}
	p := o.parked
	o.parked = nil
	if p.seq == o.seq {
		o.startFetchLocked(p.seq, p.filters)
	}
}

// LoadMore подгружает следующую страницу и дописывает ее к текущему результату.
// Возвращает false, если подгрузка сейчас невозможна.
func (o *FetchOrchestrator) LoadMore(ctx context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false, errOrchestratorClosed
	}
	if o.result == nil || !o.result.HasNext() || o.loading || o.inFlight || o.lm.loading {
		return false, nil
	}
	if o.lm.count >= o.cfg.LoadMoreLimit {
		return false, nil
	}
	now := o.deps.Clock.Now()
	if !o.lm.lastAt.IsZero() && now.Sub(o.lm.lastAt) < o.cfg.LoadMoreInterval {
		return false, nil
	}
	page, ok := domain.PageFromURL(o.result.Next)
	if !ok || page == nil {
		return false, nil
	}

	seq := o.seq
	filters := o.current.WithPage(page)

	lmCtx, cancel := context.WithCancelCause(o.requestContext(o.ctx))
	timer := o.deps.Clock.AfterFunc(o.cfg.LoadMoreTimeout, func() { cancel(errLoadMoreTimeout) })

	o.lm.count++
	o.lm.lastAt = now
	o.lm.loading = true
	o.lm.cancel = cancel
	o.emitStateLocked()

	contextkeys.LoggerFromContext(ctx).Info("Load more started", port.Fields{"page": *page, "load_count": o.lm.count})

	o.wg.Add(1)
	go o.runLoadMore(lmCtx, cancel, timer, seq, filters)
	return true, nil
}

type fetchOutcome struct {
	result domain.QueryResult
	err    error
}

func (o *FetchOrchestrator) runLoadMore(ctx context.Context, cancel context.CancelCauseFunc, timer clockwork.Timer, seq uint64, filters domain.FilterCriteria) {
	defer o.wg.Done()
	defer timer.Stop()

	logger := o.logger().WithFields(port.Fields{"seq": seq, "trace_id": contextkeys.TraceIDFromContext(ctx), "load_more": true})

	// Ответ гоняется с таймаутом: кто первый, тот и определяет исход
	done := make(chan fetchOutcome, 1)
	go func() {
		r, err := o.deps.API.FilterProperties(ctx, filters)
		done <- fetchOutcome{result: r, err: err}
	}()

	var out fetchOutcome
	var cause error
	select {
	case out = <-done:
	case <-ctx.Done():
		cause = context.Cause(ctx)
	}
	if cause == nil && out.err != nil {
		// клиент мог вернуть ошибку отмены раньше, чем сработал select
		cause = context.Cause(ctx)
	}
	cancel(nil)

	var publish *domain.SearchPerformedEvent

	o.mu.Lock()
	if seq == o.seq && o.lm.loading {
		o.lm.loading = false
		o.lm.cancel = nil
	}
	if o.closed {
		o.mu.Unlock()
		return
	}

	switch {
	case seq != o.seq || errors.Is(cause, errLoadMoreSuperseded):
		logger.Debug("Discarding stale load more", nil)
	case errors.Is(cause, errLoadMoreTimeout):
		apiErr := o.deps.Normalizer.LoadMoreTimeout()
		logger.Warn("Load more timed out", port.Fields{"timeout": o.cfg.LoadMoreTimeout.String()})
		o.lastErr = apiErr
		if o.deps.Notifications != nil {
			o.deps.Notifications.Error(domain.SourceLoadMoreTimeout, o.deps.Normalizer.Text(errnorm.MsgLoadMoreTooLong))
		}
	case out.err != nil || cause != nil:
		err := out.err
		if err == nil {
			err = cause
		}
		apiErr := o.deps.Normalizer.Normalize(err)
		logger.Warn("Load more failed", port.Fields{"status": apiErr.Status, "error": apiErr.Message})
		o.lastErr = apiErr
		if o.deps.Notifications != nil {
			o.deps.Notifications.Error(domain.SourceLoadMore, apiErr.Message)
		}
	default:
		o.appendPageLocked(out.result)
		o.lastErr = nil
		publish = o.searchEvent(filters, out.result, true)
	}

	o.dispatchParkedLocked()
	o.emitStateLocked()
	o.mu.Unlock()

	o.publish(ctx, publish)
}

// appendPageLocked дописывает элементы страницы по порядку и обновляет пагинацию.
func (o *FetchOrchestrator) appendPageLocked(page domain.QueryResult) {
	merged := domain.QueryResult{}
	if o.result != nil {
		merged = o.result.Clone()
	}
	merged.Items = append(merged.Items, page.Items...)
	merged.TotalCount = page.TotalCount
	merged.Next = page.Next
	merged.Previous = page.Previous
	merged.Page = page.Page
	merged.TotalPages = page.TotalPages
	o.result = &merged
	o.fromCache = false
}

// NextPage переключает фильтры на следующую страницу. Это новый запрос.
func (o *FetchOrchestrator) NextPage() bool {
	return o.goToPage(func(r *domain.QueryResult) string { return r.Next }, false)
}

// PreviousPage переключает фильтры на предыдущую страницу. Ссылка без page - первая страница.
func (o *FetchOrchestrator) PreviousPage() bool {
	return o.goToPage(func(r *domain.QueryResult) string { return r.Previous }, true)
}

func (o *FetchOrchestrator) goToPage(link func(*domain.QueryResult) string, allowFirst bool) bool {
	o.mu.Lock()
	if o.closed || o.result == nil {
		o.mu.Unlock()
		return false
	}
	target := link(o.result)
	current := o.current
	o.mu.Unlock()

	page, ok := domain.PageFromURL(target)
	if !ok || (page == nil && !allowFirst) {
		return false
	}
	o.deps.Filters.SetFilters(current.WithPage(page))
	return true
}

// State возвращает снимок состояния сессии.
func (o *FetchOrchestrator) State() domain.ExplorerState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *FetchOrchestrator) snapshotLocked() domain.ExplorerState {
	st := domain.ExplorerState{
		Filters:        o.current.Clone(),
		FiltersVersion: o.version,
		FromCache:      o.fromCache,
		Loading:        o.loading,
		Fetching:       o.inFlight || o.lm.loading,
		Error:          o.lastErr,
		LoadMore: domain.LoadMoreState{
			Count:    o.lm.count,
			LastAt:   o.lm.lastAt,
			Loading:  o.lm.loading,
			Disabled: o.lm.count >= o.cfg.LoadMoreLimit,
		},
	}
	if o.result != nil {
		r := o.result.Clone()
		st.Result = &r
	}
	if o.deps.Selection != nil {
		st.Selection = o.deps.Selection.Pointer()
	}
	return st
}

func (o *FetchOrchestrator) emitStateLocked() {
	if o.deps.Notifier == nil {
		return
	}
	o.deps.Notifier.Notify(o.ctx, port.SessionEvent{
		SessionID: o.deps.SessionID,
		Type:      domain.EventState,
		Data:      o.snapshotLocked(),
	})
}

func (o *FetchOrchestrator) stopDebounceLocked() {
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
}

// resetLoadMoreLocked обнуляет счетчики и отменяет подгрузку текущего запроса.
func (o *FetchOrchestrator) resetLoadMoreLocked(cause error) {
	if o.lm.cancel != nil {
		o.lm.cancel(cause)
	}
	o.lm = loadMoreCounters{}
}

func (o *FetchOrchestrator) searchEvent(filters domain.FilterCriteria, result domain.QueryResult, loadMore bool) *domain.SearchPerformedEvent {
	if o.deps.Publisher == nil {
		return nil
	}
	return &domain.SearchPerformedEvent{
		SessionID:   o.deps.SessionID,
		Filters:     filters.Canonical(),
		TotalCount:  result.TotalCount,
		ResultCount: len(result.Items),
		LoadMore:    loadMore,
		OccurredAt:  o.deps.Clock.Now().UTC(),
	}
}

func (o *FetchOrchestrator) publish(ctx context.Context, event *domain.SearchPerformedEvent) {
	if event == nil {
		return
	}
	if err := o.deps.Publisher.PublishSearchPerformed(context.WithoutCancel(ctx), *event); err != nil {
		o.logger().Warn("Failed to publish search event", port.Fields{"error": err.Error()})
	}
}

// Close останавливает таймеры, отменяет запросы и ждет их завершения.
func (o *FetchOrchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.stopDebounceLocked()
	o.resetLoadMoreLocked(errOrchestratorClosed)
	o.parked = nil
	o.mu.Unlock()

	o.unsubscribe()
	o.cancel()
	o.wg.Wait()
}
