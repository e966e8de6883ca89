package usecase

import (
	"context"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"strings"
)

// SubmitContactUseCase проверяет форму обратной связи и отправляет ее на бэкенд.
// Невалидная форма до сети не доходит.
type SubmitContactUseCase struct {
	api        port.ContactAPIPort
	checker    *FormChecker
	normalizer *errnorm.Normalizer
	notifier   SessionNotifierPort
}

func NewSubmitContactUseCase(api port.ContactAPIPort, checker *FormChecker, normalizer *errnorm.Normalizer, notifier SessionNotifierPort) *SubmitContactUseCase {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &SubmitContactUseCase{api: api, checker: checker, normalizer: normalizer, notifier: notifier}
}

func (uc *SubmitContactUseCase) Execute(ctx context.Context, form domain.ContactForm) (domain.ContactResponse, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SubmitContact"})
	ucLogger.Info("Use case started", nil)

	form = domain.ContactForm{
		Name:    strings.TrimSpace(form.Name),
		Email:   strings.TrimSpace(form.Email),
		Phone:   strings.TrimSpace(form.Phone),
		Subject: strings.TrimSpace(form.Subject),
		Message: strings.TrimSpace(form.Message),
	}
	if err := uc.checker.Check(ctx, port.FormContact, form); err != nil {
		ucLogger.Warn("Contact form rejected", nil)
		return domain.ContactResponse{}, err
	}

	resp, err := uc.api.SubmitContact(ctx, form)
	if err != nil {
		ucLogger.Error("Backend rejected contact form", err, nil)
		return domain.ContactResponse{}, err
	}

	if resp.Message == "" {
		resp.Message = uc.normalizer.Text(errnorm.MsgContactSent)
	}
	if uc.notifier != nil {
		uc.notifier.Success(ctx, uc.normalizer.Text(errnorm.MsgContactSent))
	}

	ucLogger.Info("Use case finished successfully", nil)
	return resp, nil
}
