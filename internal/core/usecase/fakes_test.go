package usecase

import (
	"context"
	"errors"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeKV - хранилище в памяти с возможностью сломать запись.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
	failGet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errors.New("storage unavailable")
	}
	v, ok := f.data[key]
	if !ok {
		return nil, port.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errors.New("quota exceeded")
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeKV) Close() error { return nil }

func (f *fakeKV) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

// fakeCall - один запрос к fakePropertyAPI, ждущий ответа из теста.
type fakeCall struct {
	filters domain.FilterCriteria
	reply   chan fetchOutcome
}

func (c *fakeCall) succeed(r domain.QueryResult) { c.reply <- fetchOutcome{result: r} }
func (c *fakeCall) fail(err error)               { c.reply <- fetchOutcome{err: err} }

type fakePropertyAPI struct {
	calls chan *fakeCall
}

func newFakePropertyAPI() *fakePropertyAPI {
	return &fakePropertyAPI{calls: make(chan *fakeCall, 100)}
}

func (f *fakePropertyAPI) FilterProperties(ctx context.Context, filters domain.FilterCriteria) (domain.QueryResult, error) {
	call := &fakeCall{filters: filters, reply: make(chan fetchOutcome, 1)}
	f.calls <- call
	select {
	case out := <-call.reply:
		return out.result, out.err
	case <-ctx.Done():
		return domain.QueryResult{}, ctx.Err()
	}
}

func (f *fakePropertyAPI) GetProperty(context.Context, int64) (domain.Property, error) {
	return domain.Property{}, errors.New("not implemented")
}

func (f *fakePropertyAPI) FeaturedProperties(context.Context) ([]domain.Property, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePropertyAPI) SearchProperties(context.Context, string, domain.FilterCriteria) (domain.QueryResult, error) {
	return domain.QueryResult{}, errors.New("not implemented")
}

func (f *fakePropertyAPI) nextCall(t *testing.T) *fakeCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a backend call")
		return nil
	}
}

func (f *fakePropertyAPI) noCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected backend call with filters %s", Canonicalize(c.filters))
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeNotifier запоминает все события.
type fakeNotifier struct {
	mu     sync.Mutex
	events []port.SessionEvent
}

func (f *fakeNotifier) Notify(_ context.Context, event port.SessionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) ofType(typ string) []port.SessionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []port.SessionEvent
	for _, e := range f.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifier) notifications() []domain.Notification {
	var out []domain.Notification
	for _, e := range f.ofType(domain.EventNotification) {
		out = append(out, e.Data.(domain.Notification))
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.SearchPerformedEvent
}

func (f *fakePublisher) PublishSearchPerformed(_ context.Context, e domain.SearchPerformedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func props(ids ...int64) []domain.Property {
	out := make([]domain.Property, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Property{ID: id, Title: "p"})
	}
	return out
}

func ids(items []domain.Property) []int64 {
	out := make([]int64, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}
