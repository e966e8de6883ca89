package port

import (
	"context"
	"net/url"
	"property-explorer/internal/core/domain"
)

type BookmarkAPIPort interface {
	ListBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	AddBookmark(ctx context.Context, propertyID int64) (domain.Bookmark, error)
	// RemoveBookmark удаляет закладку по id объекта.
	RemoveBookmark(ctx context.Context, propertyID int64) error
}

type LikeAPIPort interface {
	ListLikes(ctx context.Context) ([]domain.Like, error)
	AddLike(ctx context.Context, propertyID int64) (domain.Like, error)
	// RemoveLike удаляет лайк по его собственному id.
	RemoveLike(ctx context.Context, likeID int64) error
}

type CategoryAPIPort interface {
	ListCategories(ctx context.Context, params url.Values) (domain.Page[domain.Category], error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
}

type MessageAPIPort interface {
	ListMessages(ctx context.Context, params url.Values) (domain.Page[domain.Message], error)
	GetMessage(ctx context.Context, id int64) (domain.Message, error)
	SendMessage(ctx context.Context, data domain.SendMessageData) (domain.Message, error)
}

type UserAPIPort interface {
	ListUsers(ctx context.Context, params url.Values) (domain.Page[domain.User], error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CurrentUser(ctx context.Context) (domain.User, error)
	UpdateUser(ctx context.Context, id int64, data domain.UpdateUserData) (domain.User, error)
}

type AuthAPIPort interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.AuthTokens, error)
	Register(ctx context.Context, data domain.RegisterData) (domain.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error)
	Logout(ctx context.Context) error
}

type ContactAPIPort interface {
	SubmitContact(ctx context.Context, form domain.ContactForm) (domain.ContactResponse, error)
}

// GeoLocatorPort определяет местоположение по IP-адресу.
type GeoLocatorPort interface {
	Locate(ctx context.Context, ip string) (domain.UserLocation, error)
}
