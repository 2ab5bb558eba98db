package publisher

import (
	"context"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

// Renderer receives frames for one presentation.
type Renderer interface {
	Render(ctx context.Context, frame *domain.Frame) error
}

// PermissionRequester asks a customer's device for location permission.
type PermissionRequester interface {
	RequestPermission(ctx context.Context, customerID string) error
}
