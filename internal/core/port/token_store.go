package port

import "context"

// TokenStorePort хранит токены текущей сессии. Сессия берется из контекста.
type TokenStorePort interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}
