package rest

import "property-explorer/internal/core/domain"

// SelectionRequest - тело PUT /explorer/selection.
type SelectionRequest struct {
	PropertyID int64         `json:"property_id"`
	Origin     domain.Origin `json:"origin"`
}

// ActionResponse - результат действия над выборкой и новое состояние.
type ActionResponse struct {
	Started bool                 `json:"started"`
	State   domain.ExplorerState `json:"state"`
}

type ClustersResponse struct {
	Zoom      int                 `json:"zoom"`
	Precision uint                `json:"precision"`
	Clusters  []domain.MapCluster `json:"clusters"`
}

type ViewportResponse struct {
	State domain.MapViewState `json:"state"`
	Saved bool                `json:"saved"`
}

type AddBookmarkRequest struct {
	PropertyID int64 `json:"property_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
