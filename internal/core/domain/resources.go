package domain

// Bookmark - объект в закладках пользователя.
type Bookmark struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	Property   *Property `json:"property,omitempty"`
	CreatedAt  string    `json:"created_at,omitempty"`
}

// Like - лайк пользователя. Бэкенд присылает либо property, либо blog.
type Like struct {
	ID        int64  `json:"id"`
	User      string `json:"user,omitempty"`
	Property  *int64 `json:"property,omitempty"`
	Blog      *int64 `json:"blog,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Targets проверяет, относится ли лайк к объекту.
func (l Like) Targets(propertyID int64) bool {
	return (l.Property != nil && *l.Property == propertyID) || (l.Blog != nil && *l.Blog == propertyID)
}

// LikeStatus - результат проверки лайка.
type LikeStatus struct {
	Liked  bool   `json:"is_liked"`
	LikeID *int64 `json:"like_id"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

type Message struct {
	ID         int64  `json:"id"`
	SenderID   *int64 `json:"sender_id,omitempty"`
	ReceiverID *int64 `json:"receiver_id,omitempty"`
	PropertyID *int64 `json:"property_id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// SendMessageData - тело нового сообщения.
type SendMessageData struct {
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content"`
	ReceiverID *int64 `json:"receiver_id,omitempty"`
	PropertyID *int64 `json:"property_id,omitempty"`
}

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// UpdateUserData - частичное обновление профиля, пустые поля не отправляются.
type UpdateUserData struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Page - страница ресурса со ссылками пагинации.
type Page[T any] struct {
	Results  []T    `json:"results"`
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

type RegisterData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// AuthTokens - ответ login/register/refresh.
type AuthTokens struct {
	Token   string `json:"token,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Targets проверяет, относится ли закладка к объекту.
func (b Bookmark) Targets(propertyID int64) bool {
	return b.PropertyID == propertyID || (b.Property != nil && b.Property.ID == propertyID)
}

// ToggleResult - итог переключения закладки или лайка.
type ToggleResult struct {
	Active  bool   `json:"active"`
	LikeID  *int64 `json:"like_id,omitempty"`
	Message string `json:"message,omitempty"`
}
