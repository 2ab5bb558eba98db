package database

import (
	"context"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

type MerchantRepository interface {
	ListInArea(ctx context.Context, area domain.Area) ([]domain.Merchant, error)
}
