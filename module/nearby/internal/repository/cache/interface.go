package cache

import (
	"context"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

// MerchantCache holds directory results per area. A miss returns ok == false
// and a nil error.
type MerchantCache interface {
	Get(ctx context.Context, area domain.Area) (merchants []domain.Merchant, ok bool, err error)
	Set(ctx context.Context, area domain.Area, merchants []domain.Merchant) error
}
