package httpapi

// targetRequest is the body of POST /v1/likes, /v1/skips and /v1/favorites.
type targetRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,max=36"`
}

type friendRequestRequest struct {
	ToUserID string `json:"to_user_id" validate:"required,max=36"`
}

type reportRequest struct {
	ReportedUserID string `json:"reported_user_id" validate:"required,max=36"`
	Reason         string `json:"reason" validate:"required,max=64"`
	Description    string `json:"description" validate:"max=1000"`
}

type skipResponse struct {
	TargetUserID string `json:"target_user_id"`
	ExpiresAt    string `json:"expires_at"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}
