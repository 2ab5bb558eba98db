package service

import (
	"math"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

// DistanceFunc returns the distance in meters between two coordinates.
type DistanceFunc func(a, b domain.Coordinate) float64

type MerchantFilter struct {
	distance DistanceFunc
}

func NewMerchantFilter(distance DistanceFunc) *MerchantFilter {
	if distance == nil {
		distance = domain.Distance
	}
	return &MerchantFilter{distance: distance}
}

// Filter groups the merchants within maxRadius of user into radius bands.
// Each merchant lands in the smallest band covering its distance; bands come
// out ascending, merchants keep their input order and empty bands are left out.
func (f *MerchantFilter) Filter(user domain.Coordinate, merchants []domain.Merchant, maxRadius domain.RadiusBand) []domain.RadiusGroup {
	if !maxRadius.Valid() {
		return []domain.RadiusGroup{}
	}
	return f.FilterMeters(user, merchants, maxRadius.Meters())
}

// FilterMeters is Filter with an arbitrary cutoff. Cutoffs beyond the largest
// band are clamped to it; a cutoff that is not a positive finite number
// matches nothing.
func (f *MerchantFilter) FilterMeters(user domain.Coordinate, merchants []domain.Merchant, maxMeters float64) []domain.RadiusGroup {
	if !(maxMeters > 0) || math.IsInf(maxMeters, 1) {
		return []domain.RadiusGroup{}
	}
	bands := domain.RadiusBands()
	buckets := make(map[domain.RadiusBand][]domain.Merchant, len(bands))

	for _, m := range merchants {
		d := f.distance(user, m.Location)
		if d > maxMeters {
			continue
		}
		band, ok := domain.BandFor(d)
		if !ok {
			continue
		}
		buckets[band] = append(buckets[band], m)
	}

	groups := make([]domain.RadiusGroup, 0, len(buckets))
	for _, b := range bands {
		if ms := buckets[b]; len(ms) > 0 {
			groups = append(groups, domain.RadiusGroup{Band: b, Merchants: ms})
		}
	}
	return groups
}
