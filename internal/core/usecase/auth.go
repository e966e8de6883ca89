package usecase

import (
	"context"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"strings"
)

// AuthUseCase - вход, регистрация, обновление и сброс токена сессии.
type AuthUseCase struct {
	api        port.AuthAPIPort
	tokens     port.TokenStorePort
	checker    *FormChecker
	normalizer *errnorm.Normalizer
}

func NewAuthUseCase(api port.AuthAPIPort, tokens port.TokenStorePort, checker *FormChecker, normalizer *errnorm.Normalizer) *AuthUseCase {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &AuthUseCase{api: api, tokens: tokens, checker: checker, normalizer: normalizer}
}

func (uc *AuthUseCase) Login(ctx context.Context, creds domain.LoginCredentials) (domain.AuthTokens, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "Login"})
	ucLogger.Info("Use case started", nil)

	creds.Email = strings.TrimSpace(creds.Email)
	if err := uc.checker.Check(ctx, port.FormLogin, creds); err != nil {
		return domain.AuthTokens{}, err
	}

	tokens, err := uc.api.Login(ctx, creds)
	if err != nil {
		ucLogger.Warn("Login failed", port.Fields{"error": err.Error()})
		return domain.AuthTokens{}, err
	}
	if err := uc.save(ctx, tokens); err != nil {
		return domain.AuthTokens{}, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return tokens, nil
}

func (uc *AuthUseCase) Register(ctx context.Context, data domain.RegisterData) (domain.AuthTokens, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "Register"})
	ucLogger.Info("Use case started", nil)

	data.Email = strings.TrimSpace(data.Email)
	if err := uc.checker.Check(ctx, port.FormRegister, data); err != nil {
		return domain.AuthTokens{}, err
	}

	tokens, err := uc.api.Register(ctx, data)
	if err != nil {
		ucLogger.Warn("Registration failed", port.Fields{"error": err.Error()})
		return domain.AuthTokens{}, err
	}
	if err := uc.save(ctx, tokens); err != nil {
		return domain.AuthTokens{}, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return tokens, nil
}

// Refresh меняет токен по сохраненному refresh-токену.
func (uc *AuthUseCase) Refresh(ctx context.Context) (domain.AuthTokens, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RefreshToken"})

	refresh, err := uc.tokens.RefreshToken(ctx)
	if err != nil {
		return domain.AuthTokens{}, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if refresh == "" {
		return domain.AuthTokens{}, &domain.APIError{
			Status:  401,
			Message: uc.normalizer.Text(errnorm.MsgUnauthorized),
			Kind:    domain.KindClient,
		}
	}

	tokens, err := uc.api.Refresh(ctx, refresh)
	if err != nil {
		ucLogger.Warn("Token refresh failed", port.Fields{"error": err.Error()})
		return domain.AuthTokens{}, err
	}
	if err := uc.save(ctx, tokens); err != nil {
		return domain.AuthTokens{}, err
	}
	ucLogger.Info("Token refreshed", nil)
	return tokens, nil
}

// Logout всегда очищает токены, даже если бэкенд ответил ошибкой.
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "Logout"})

	apiErr := uc.api.Logout(ctx)
	if err := uc.tokens.Clear(ctx); err != nil {
		ucLogger.Error("Failed to clear session tokens", err, nil)
	}
	if apiErr != nil {
		ucLogger.Warn("Backend logout failed, tokens cleared anyway", port.Fields{"error": apiErr.Error()})
		return apiErr
	}
	ucLogger.Info("Logged out", nil)
	return nil
}

func (uc *AuthUseCase) save(ctx context.Context, tokens domain.AuthTokens) error {
	if tokens.Token == "" && tokens.Refresh == "" {
		return nil
	}
	if err := uc.tokens.SaveTokens(ctx, tokens.Token, tokens.Refresh); err != nil {
		return fmt.Errorf("failed to save session tokens: %w", err)
	}
	return nil
}
