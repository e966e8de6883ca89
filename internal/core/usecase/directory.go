package usecase

import (
	"context"
	"net/url"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"strings"
)

// CategoriesUseCase - справочник категорий, только чтение.
type CategoriesUseCase struct {
	api port.CategoryAPIPort
}

func NewCategoriesUseCase(api port.CategoryAPIPort) *CategoriesUseCase {
	return &CategoriesUseCase{api: api}
}

func (uc *CategoriesUseCase) List(ctx context.Context, params url.Values) (domain.Page[domain.Category], error) {
	return uc.api.ListCategories(ctx, params)
}

func (uc *CategoriesUseCase) Get(ctx context.Context, id int64) (domain.Category, error) {
	return uc.api.GetCategory(ctx, id)
}

// UsersUseCase - профили пользователей.
type UsersUseCase struct {
	api port.UserAPIPort
}

func NewUsersUseCase(api port.UserAPIPort) *UsersUseCase {
	return &UsersUseCase{api: api}
}

func (uc *UsersUseCase) List(ctx context.Context, params url.Values) (domain.Page[domain.User], error) {
	return uc.api.ListUsers(ctx, params)
}

func (uc *UsersUseCase) Get(ctx context.Context, id int64) (domain.User, error) {
	return uc.api.GetUser(ctx, id)
}

func (uc *UsersUseCase) Me(ctx context.Context) (domain.User, error) {
	return uc.api.CurrentUser(ctx)
}

func (uc *UsersUseCase) Update(ctx context.Context, id int64, data domain.UpdateUserData) (domain.User, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "UpdateUser", "user_id": id})
	ucLogger.Info("Use case started", nil)

	user, err := uc.api.UpdateUser(ctx, id, data)
	if err != nil {
		ucLogger.Error("Backend rejected profile update", err, nil)
		return domain.User{}, err
	}
	ucLogger.Info("Use case finished successfully", nil)
	return user, nil
}

// MessagesUseCase - переписка пользователя. Отправка проходит проверку формы.
type MessagesUseCase struct {
	api        port.MessageAPIPort
	checker    *FormChecker
	normalizer *errnorm.Normalizer
	notifier   SessionNotifierPort
}

func NewMessagesUseCase(api port.MessageAPIPort, checker *FormChecker, normalizer *errnorm.Normalizer, notifier SessionNotifierPort) *MessagesUseCase {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &MessagesUseCase{api: api, checker: checker, normalizer: normalizer, notifier: notifier}
}

func (uc *MessagesUseCase) List(ctx context.Context, params url.Values) (domain.Page[domain.Message], error) {
	return uc.api.ListMessages(ctx, params)
}

func (uc *MessagesUseCase) Get(ctx context.Context, id int64) (domain.Message, error) {
	return uc.api.GetMessage(ctx, id)
}

func (uc *MessagesUseCase) Send(ctx context.Context, data domain.SendMessageData) (domain.Message, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SendMessage"})
	ucLogger.Info("Use case started", nil)

	data.Subject = strings.TrimSpace(data.Subject)
	data.Content = strings.TrimSpace(data.Content)
	if err := uc.checker.Check(ctx, port.FormMessage, data); err != nil {
		return domain.Message{}, err
	}

	msg, err := uc.api.SendMessage(ctx, data)
	if err != nil {
		ucLogger.Error("Backend rejected message", err, nil)
		return domain.Message{}, err
	}
	if uc.notifier != nil {
		uc.notifier.Success(ctx, uc.normalizer.Text(errnorm.MsgMessageSent))
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"message_id": msg.ID})
	return msg, nil
}
