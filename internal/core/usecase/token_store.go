package usecase

import (
	"context"
	"errors"
	"property-explorer/internal/core/port"
)

const (
	AuthTokenKeyName    = "auth_token"
	RefreshTokenKeyName = "refresh_token"
)

// SessionTokenStore хранит токены в общем KV-хранилище под ключами сессии из контекста.
type SessionTokenStore struct {
	store port.KeyValueStore
}

var _ port.TokenStorePort = (*SessionTokenStore)(nil)

func NewSessionTokenStore(store port.KeyValueStore) *SessionTokenStore {
	return &SessionTokenStore{store: store}
}

func (s *SessionTokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AuthTokenKeyName)
}

func (s *SessionTokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKeyName)
}

// SaveTokens сохраняет токены. Пустой refresh не затирает сохраненный ранее.
func (s *SessionTokenStore) SaveTokens(ctx context.Context, access, refresh string) error {
	if access != "" {
		if err := s.store.Set(ctx, SessionKey(ctx, AuthTokenKeyName), []byte(access)); err != nil {
			return err
		}
	}
	if refresh != "" {
		if err := s.store.Set(ctx, SessionKey(ctx, RefreshTokenKeyName), []byte(refresh)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionTokenStore) Clear(ctx context.Context) error {
	return errors.Join(
		s.store.Delete(ctx, SessionKey(ctx, AuthTokenKeyName)),
		s.store.Delete(ctx, SessionKey(ctx, RefreshTokenKeyName)),
	)
}

func (s *SessionTokenStore) get(ctx context.Context, name string) (string, error) {
	raw, err := s.store.Get(ctx, SessionKey(ctx, name))
	if errors.Is(err, port.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
