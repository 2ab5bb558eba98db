package service

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/cache"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/database"
)

// areaMarginMeters widens stateless lookups past the cache's center rounding
// (about 8 m) so a shared entry still covers the requested circle.
const areaMarginMeters = 20

// DirectoryService reads the merchant directory through a cache. The cache is
// optional and its failures never fail a fetch.
type DirectoryService struct {
	repo  database.MerchantRepository
	cache cache.MerchantCache
}

func NewDirectoryService(repo database.MerchantRepository, c cache.MerchantCache) *DirectoryService {
	return &DirectoryService{repo: repo, cache: c}
}

func (s *DirectoryService) FetchArea(ctx context.Context, area domain.Area) ([]domain.Merchant, error) {
	if !area.Center.Valid() || !(area.RadiusMeters > 0) || math.IsInf(area.RadiusMeters, 1) {
		return nil, domain.ErrInvalidCoordinate
	}

	if s.cache != nil {
		merchants, ok, err := s.cache.Get(ctx, area)
		if err != nil {
			log.Printf("merchant cache get: %v", err)
		} else if ok {
			return merchants, nil
		}
	}

	merchants, err := s.repo.ListInArea(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryFetchFailed, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, area, merchants); err != nil {
			log.Printf("merchant cache set: %v", err)
		}
	}
	return merchants, nil
}

// Nearby groups the directory's merchants around user without a session.
func (s *DirectoryService) Nearby(ctx context.Context, user domain.Coordinate, maxMeters float64) ([]domain.RadiusGroup, error) {
	if !(maxMeters > 0 && maxMeters <= domain.MaxRadiusBand().Meters()) {
		maxMeters = domain.MaxRadiusBand().Meters()
	}
	merchants, err := s.FetchArea(ctx, domain.Area{Center: user, RadiusMeters: maxMeters + areaMarginMeters})
	if err != nil {
		return nil, err
	}
	return NewMerchantFilter(nil).FilterMeters(user, merchants, maxMeters), nil
}
