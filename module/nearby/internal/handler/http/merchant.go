package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

type directoryService interface {
	Nearby(ctx context.Context, user domain.Coordinate, maxMeters float64) ([]domain.RadiusGroup, error)
}

type nearbyResponse struct {
	Latitude     float64              `json:"latitude"`
	Longitude    float64              `json:"longitude"`
	RadiusMeters float64              `json:"radius_meters"`
	Count        int                  `json:"count"`
	Groups       []domain.RadiusGroup `json:"groups"`
}

type MerchantHandler struct {
	directorySvc directoryService
}

func NewMerchantHandler(directorySvc directoryService) *MerchantHandler {
	return &MerchantHandler{directorySvc: directorySvc}
}

func (h *MerchantHandler) Register(r *gin.RouterGroup) {
	r.GET("/merchants/nearby", h.Nearby)
}

func (h *MerchantHandler) Nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon parameter"})
		return
	}
	user := domain.Coordinate{Lat: lat, Lon: lon}
	if !user.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinate out of range"})
		return
	}

	radius := domain.MaxRadiusBand().Meters()
	if q := c.Query("radius"); q != "" {
		radius, err = parseRadiusMeters(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius parameter"})
			return
		}
	}

	groups, err := h.directorySvc.Nearby(c.Request.Context(), user, radius)
	if err != nil {
		writeError(c, err, "failed to fetch merchants")
		return
	}

	count := 0
	for _, g := range groups {
		count += len(g.Merchants)
	}
	c.JSON(http.StatusOK, nearbyResponse{
		Latitude:     lat,
		Longitude:    lon,
		RadiusMeters: radius,
		Count:        count,
		Groups:       groups,
	})
}

// parseRadiusMeters accepts a band label or a positive distance in meters no
// larger than the widest band.
func parseRadiusMeters(q string) (float64, error) {
	if band, err := domain.ParseRadiusBand(q); err == nil {
		return band.Meters(), nil
	}
	m, err := strconv.ParseFloat(q, 64)
	if err != nil {
		return 0, err
	}
	if !(m > 0 && m <= domain.MaxRadiusBand().Meters()) {
		return 0, domain.ErrInvalidRadius
	}
	return m, nil
}
