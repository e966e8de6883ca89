package usecase

import (
	"context"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
)

// BookmarksUseCase - закладки пользователя текущей сессии.
type BookmarksUseCase struct {
	api        port.BookmarkAPIPort
	normalizer *errnorm.Normalizer
}

func NewBookmarksUseCase(api port.BookmarkAPIPort, normalizer *errnorm.Normalizer) *BookmarksUseCase {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &BookmarksUseCase{api: api, normalizer: normalizer}
}

func (uc *BookmarksUseCase) List(ctx context.Context) ([]domain.Bookmark, error) {
	return uc.api.ListBookmarks(ctx)
}

func (uc *BookmarksUseCase) Add(ctx context.Context, propertyID int64) (domain.Bookmark, error) {
	return uc.api.AddBookmark(ctx, propertyID)
}

func (uc *BookmarksUseCase) Remove(ctx context.Context, propertyID int64) error {
	return uc.api.RemoveBookmark(ctx, propertyID)
}

// IsBookmarked при ошибке загрузки списка считает, что закладки нет.
func (uc *BookmarksUseCase) IsBookmarked(ctx context.Context, propertyID int64) bool {
	bookmarks, err := uc.api.ListBookmarks(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Debug("Bookmark check failed, assuming not bookmarked", port.Fields{
			"property_id": propertyID,
			"error":       err.Error(),
		})
		return false
	}
	for _, b := range bookmarks {
		if b.Targets(propertyID) {
			return true
		}
	}
	return false
}

// Toggle добавляет объект в закладки или убирает его оттуда.
func (uc *BookmarksUseCase) Toggle(ctx context.Context, propertyID int64) (domain.ToggleResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ToggleBookmark",
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	if uc.IsBookmarked(ctx, propertyID) {
		if err := uc.api.RemoveBookmark(ctx, propertyID); err != nil {
			ucLogger.Error("Failed to remove bookmark", err, nil)
			return domain.ToggleResult{}, err
		}
		ucLogger.Info("Use case finished successfully", port.Fields{"bookmarked": false})
		return domain.ToggleResult{Active: false, Message: uc.normalizer.Text(errnorm.MsgBookmarkRemoved)}, nil
	}

	if _, err := uc.api.AddBookmark(ctx, propertyID); err != nil {
		ucLogger.Error("Failed to add bookmark", err, nil)
		return domain.ToggleResult{}, err
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"bookmarked": true})
	return domain.ToggleResult{Active: true, Message: uc.normalizer.Text(errnorm.MsgBookmarkAdded)}, nil
}
