package usecases_port

import (
	"context"
	"net/url"
	"property-explorer/internal/core/domain"
)

type BookmarksUseCasePort interface {
	List(ctx context.Context) ([]domain.Bookmark, error)
	Add(ctx context.Context, propertyID int64) (domain.Bookmark, error)
	Remove(ctx context.Context, propertyID int64) error
	Toggle(ctx context.Context, propertyID int64) (domain.ToggleResult, error)
}

type LikesUseCasePort interface {
	List(ctx context.Context) ([]domain.Like, error)
	Check(ctx context.Context, propertyID int64) domain.LikeStatus
	Toggle(ctx context.Context, propertyID int64) (domain.ToggleResult, error)
}

type CategoriesUseCasePort interface {
	List(ctx context.Context, params url.Values) (domain.Page[domain.Category], error)
	Get(ctx context.Context, id int64) (domain.Category, error)
}

type MessagesUseCasePort interface {
	List(ctx context.Context, params url.Values) (domain.Page[domain.Message], error)
	Get(ctx context.Context, id int64) (domain.Message, error)
	Send(ctx context.Context, data domain.SendMessageData) (domain.Message, error)
}

type UsersUseCasePort interface {
	List(ctx context.Context, params url.Values) (domain.Page[domain.User], error)
	Get(ctx context.Context, id int64) (domain.User, error)
	Me(ctx context.Context) (domain.User, error)
	Update(ctx context.Context, id int64, data domain.UpdateUserData) (domain.User, error)
}

type AuthUseCasePort interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.AuthTokens, error)
	Register(ctx context.Context, data domain.RegisterData) (domain.AuthTokens, error)
	Refresh(ctx context.Context) (domain.AuthTokens, error)
	Logout(ctx context.Context) error
}

type SubmitContactUseCasePort interface {
	Execute(ctx context.Context, form domain.ContactForm) (domain.ContactResponse, error)
}
