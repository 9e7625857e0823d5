package ports

import (
	"context"

	"github.com/aretw0/lantern/pkg/domain"
)

// LanternGateway creates lanterns on the remote service.
// Implementations must not retry: a failed call returns a *domain.GatewayError
// and the caller decides whether to resubmit.
type LanternGateway interface {
	CreateLantern(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error)
}

// LanternReader fetches a single lantern by its remote ID.
// Returns an error matching domain.ErrLanternNotFound if it doesn't exist.
type LanternReader interface {
	GetLantern(ctx context.Context, id string) (domain.LanternRecord, error)
}
