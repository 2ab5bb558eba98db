package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
)

type sessionService interface {
	Open(ctx context.Context, req domain.OpenSessionRequest) (domain.View, error)
	View(ctx context.Context, customerID, sessionID string) (domain.View, error)
	SetRadius(ctx context.Context, customerID, sessionID string, band domain.RadiusBand) error
	SetViewMode(ctx context.Context, customerID, sessionID string, mode domain.ViewMode) error
	Close(customerID, sessionID string) error
}

type areaRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type openSessionRequest struct {
	Area     areaRequest `json:"area"`
	Radius   string      `json:"radius"`
	ViewMode string      `json:"view_mode"`
}

type radiusRequest struct {
	Radius string `json:"radius" binding:"required"`
}

type viewModeRequest struct {
	ViewMode string `json:"view_mode" binding:"required"`
}

type SessionHandler struct {
	sessionSvc sessionService
	auth       gin.HandlerFunc
}

func NewSessionHandler(sessionSvc sessionService, auth gin.HandlerFunc) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, auth: auth}
}

func (h *SessionHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/sessions", h.auth)
	g.POST("", h.Open)
	g.GET("/:session_id", h.Get)
	g.PUT("/:session_id/radius", h.SetRadius)
	g.PUT("/:session_id/view", h.SetViewMode)
	g.DELETE("/:session_id", h.Close)
}

func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	open := domain.OpenSessionRequest{
		CustomerID: customerFrom(c),
		Center:     domain.Coordinate{Lat: *req.Area.Latitude, Lon: *req.Area.Longitude},
	}
	if !open.Center.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid area coordinate"})
		return
	}
	if req.Radius != "" {
		band, err := domain.ParseRadiusBand(req.Radius)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		open.Radius = band
	}
	if req.ViewMode != "" {
		mode, err := domain.ParseViewMode(req.ViewMode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		open.Mode = mode
	}

	view, err := h.sessionSvc.Open(c.Request.Context(), open)
	if err != nil {
		writeError(c, err, "failed to open session")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.sessionSvc.View(c.Request.Context(), customerFrom(c), c.Param("session_id"))
	if err != nil {
		writeError(c, err, "failed to read session")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) SetRadius(c *gin.Context) {
	var req radiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	band, err := domain.ParseRadiusBand(req.Radius)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	customerID, sessionID := customerFrom(c), c.Param("session_id")
	if err := h.sessionSvc.SetRadius(ctx, customerID, sessionID, band); err != nil {
		writeError(c, err, "failed to set radius")
		return
	}
	h.respondView(c, customerID, sessionID)
}

func (h *SessionHandler) SetViewMode(c *gin.Context) {
	var req viewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mode, err := domain.ParseViewMode(req.ViewMode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	customerID, sessionID := customerFrom(c), c.Param("session_id")
	if err := h.sessionSvc.SetViewMode(ctx, customerID, sessionID, mode); err != nil {
		writeError(c, err, "failed to set view mode")
		return
	}
	h.respondView(c, customerID, sessionID)
}

func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessionSvc.Close(customerFrom(c), c.Param("session_id")); err != nil {
		writeError(c, err, "failed to close session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) respondView(c *gin.Context, customerID, sessionID string) {
	view, err := h.sessionSvc.View(c.Request.Context(), customerID, sessionID)
	if err != nil {
		writeError(c, err, "failed to read session")
		return
	}
	c.JSON(http.StatusOK, view)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSynchronizerStopped):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, domain.ErrInvalidRadius),
		errors.Is(err, domain.ErrInvalidViewMode),
		errors.Is(err, domain.ErrInvalidCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDirectoryFetchFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "merchant directory unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
