package backend_client

import (
	"context"
	"net/http"
	"net/url"
	"property-explorer/internal/core/domain"
	"strconv"
)

func idPath(resource string, id int64) string {
	return resource + "/" + strconv.FormatInt(id, 10) + "/"
}

// --- bookmarks ---

func (c *Client) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	var list flexList[bookmarkDTO]
	if err := c.call(ctx, http.MethodGet, "bookmarks/", nil, nil, &list); err != nil {
		return nil, err
	}
	out := make([]domain.Bookmark, len(list.Results))
	for i, d := range list.Results {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (c *Client) AddBookmark(ctx context.Context, propertyID int64) (domain.Bookmark, error) {
	var dto bookmarkDTO
	if err := c.call(ctx, http.MethodPost, "bookmarks/", nil, addBookmarkRequest{PropertyID: propertyID}, &dto); err != nil {
		return domain.Bookmark{}, err
	}
	b := dto.toDomain()
	if b.PropertyID == 0 {
		b.PropertyID = propertyID
	}
	return b, nil
}

// RemoveBookmark - DELETE bookmarks/{propertyID}/, бэкенд удаляет по id объекта.
func (c *Client) RemoveBookmark(ctx context.Context, propertyID int64) error {
	return c.call(ctx, http.MethodDelete, idPath("bookmarks", propertyID), nil, nil, nil)
}

// --- likes ---

func (c *Client) ListLikes(ctx context.Context) ([]domain.Like, error) {
	var list flexList[domain.Like]
	if err := c.call(ctx, http.MethodGet, "likes/", nil, nil, &list); err != nil {
		return nil, err
	}
	return toPage(list).Results, nil
}

func (c *Client) AddLike(ctx context.Context, propertyID int64) (domain.Like, error) {
	var like domain.Like
	err := c.call(ctx, http.MethodPost, "likes/", nil, addLikeRequest{Property: propertyID}, &like)
	return like, err
}

// RemoveLike - DELETE likes/{likeID}/, здесь id самого лайка.
func (c *Client) RemoveLike(ctx context.Context, likeID int64) error {
	return c.call(ctx, http.MethodDelete, idPath("likes", likeID), nil, nil, nil)
}

// --- categories ---

func (c *Client) ListCategories(ctx context.Context, params url.Values) (domain.Page[domain.Category], error) {
	var list flexList[domain.Category]
	if err := c.call(ctx, http.MethodGet, "categories/", params, nil, &list); err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return toPage(list), nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var cat domain.Category
	err := c.call(ctx, http.MethodGet, idPath("categories", id), nil, nil, &cat)
	return cat, err
}

// --- messages ---

func (c *Client) ListMessages(ctx context.Context, params url.Values) (domain.Page[domain.Message], error) {
	var list flexList[domain.Message]
	if err := c.call(ctx, http.MethodGet, "messages/", params, nil, &list); err != nil {
		return domain.Page[domain.Message]{}, err
	}
	return toPage(list), nil
}

func (c *Client) GetMessage(ctx context.Context, id int64) (domain.Message, error) {
	var msg domain.Message
	err := c.call(ctx, http.MethodGet, idPath("messages", id), nil, nil, &msg)
	return msg, err
}

func (c *Client) SendMessage(ctx context.Context, data domain.SendMessageData) (domain.Message, error) {
	var msg domain.Message
	err := c.call(ctx, http.MethodPost, "messages/", nil, data, &msg)
	return msg, err
}

// --- users ---

func (c *Client) ListUsers(ctx context.Context, params url.Values) (domain.Page[domain.User], error) {
	var list flexList[domain.User]
	if err := c.call(ctx, http.MethodGet, "users/", params, nil, &list); err != nil {
		return domain.Page[domain.User]{}, err
	}
	return toPage(list), nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := c.call(ctx, http.MethodGet, idPath("users", id), nil, nil, &user)
	return user, err
}

func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := c.call(ctx, http.MethodGet, "users/me/", nil, nil, &user)
	return user, err
}

// UpdateUser - PATCH, пустые поля не отправляются.
func (c *Client) UpdateUser(ctx context.Context, id int64, data domain.UpdateUserData) (domain.User, error) {
	var user domain.User
	err := c.call(ctx, http.MethodPatch, idPath("users", id), nil, data, &user)
	return user, err
}

// --- auth ---

func (c *Client) Login(ctx context.Context, creds domain.LoginCredentials) (domain.AuthTokens, error) {
	var resp authResponse
	if err := c.call(ctx, http.MethodPost, "auth/login/", nil, creds, &resp); err != nil {
		return domain.AuthTokens{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) Register(ctx context.Context, data domain.RegisterData) (domain.AuthTokens, error) {
	var resp authResponse
	if err := c.call(ctx, http.MethodPost, "auth/register/", nil, data, &resp); err != nil {
		return domain.AuthTokens{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	var resp authResponse
	if err := c.call(ctx, http.MethodPost, "auth/refresh/", nil, refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return domain.AuthTokens{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "auth/logout/", nil, nil, nil)
}

// --- contact ---

func (c *Client) SubmitContact(ctx context.Context, form domain.ContactForm) (domain.ContactResponse, error) {
	var resp domain.ContactResponse
	err := c.call(ctx, http.MethodPost, "contact/", nil, form, &resp)
	return resp, err
}
