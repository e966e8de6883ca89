package port

import (
	"context"
	"errors"
)

// ErrKeyNotFound возвращают хранилища, когда ключа нет.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore - контракт для хранилища строковых ключей и байтовых значений.
// На нем держатся кэш выборок, токены и состояние карты.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys возвращает все ключи с заданным префиксом.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
