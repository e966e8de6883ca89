package usecase

import (
	"context"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"sort"
)

// SessionNotifierPort показывает уведомление в сессии из контекста, если у нее есть подписчики.
type SessionNotifierPort interface {
	Success(ctx context.Context, message string)
}

// FormChecker проверяет формы и собирает локализованную ошибку валидации.
type FormChecker struct {
	validator  port.FormValidatorPort
	normalizer *errnorm.Normalizer
}

func NewFormChecker(validator port.FormValidatorPort, normalizer *errnorm.Normalizer) *FormChecker {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &FormChecker{validator: validator, normalizer: normalizer}
}

// Check возвращает *domain.APIError с Kind validation и текстами по полям, либо nil.
func (c *FormChecker) Check(ctx context.Context, form string, payload any) error {
	if c == nil || c.validator == nil {
		return nil
	}
	reasons, err := c.validator.Validate(form, payload)
	if err != nil {
		return fmt.Errorf("failed to validate %s form: %w", form, err)
	}
	if len(reasons) == 0 {
		return nil
	}

	fields := make(map[string]string, len(reasons))
	names := make([]string, 0, len(reasons))
	for field, reason := range reasons {
		key := errnorm.MsgFieldInvalid
		if reason == port.ReasonRequired {
			key = errnorm.MsgFieldRequired
		}
		fields[field] = c.normalizer.Text(key, field)
		names = append(names, field)
	}
	sort.Strings(names)

	contextkeys.LoggerFromContext(ctx).Debug("Form validation failed", port.Fields{"form": form, "fields": names})
	return c.normalizer.Validation(fields)
}
