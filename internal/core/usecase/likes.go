package usecase

import (
	"context"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
)

// LikesUseCase - лайки объектов. Удаление идет по id лайка, поэтому toggle сначала ищет его.
type LikesUseCase struct {
	api port.LikeAPIPort
}

func NewLikesUseCase(api port.LikeAPIPort) *LikesUseCase {
	return &LikesUseCase{api: api}
}

func (uc *LikesUseCase) List(ctx context.Context) ([]domain.Like, error) {
	return uc.api.ListLikes(ctx)
}

func (uc *LikesUseCase) Add(ctx context.Context, propertyID int64) (domain.Like, error) {
	return uc.api.AddLike(ctx, propertyID)
}

func (uc *LikesUseCase) Remove(ctx context.Context, likeID int64) error {
	return uc.api.RemoveLike(ctx, likeID)
}

// Check находит лайк объекта. Ошибка бэкенда трактуется как "не лайкнут".
func (uc *LikesUseCase) Check(ctx context.Context, propertyID int64) domain.LikeStatus {
	likes, err := uc.api.ListLikes(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Debug("Like check failed, assuming not liked", port.Fields{
			"property_id": propertyID,
			"error":       err.Error(),
		})
		return domain.LikeStatus{}
	}
	for _, l := range likes {
		if l.Targets(propertyID) {
			id := l.ID
			return domain.LikeStatus{Liked: true, LikeID: &id}
		}
	}
	return domain.LikeStatus{}
}

func (uc *LikesUseCase) Toggle(ctx context.Context, propertyID int64) (domain.ToggleResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ToggleLike",
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	status := uc.Check(ctx, propertyID)
	if status.Liked && status.LikeID != nil {
		if err := uc.api.RemoveLike(ctx, *status.LikeID); err != nil {
			ucLogger.Error("Failed to remove like", err, port.Fields{"like_id": *status.LikeID})
			return domain.ToggleResult{}, err
		}
		ucLogger.Info("Use case finished successfully", port.Fields{"liked": false})
		return domain.ToggleResult{Active: false}, nil
	}

	like, err := uc.api.AddLike(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Failed to add like", err, nil)
		return domain.ToggleResult{}, err
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"liked": true, "like_id": like.ID})
	return domain.ToggleResult{Active: true, LikeID: &like.ID}, nil
}
