package domain

import (
	"fmt"
	"time"
)

type ViewMode string

const (
	ViewMap  ViewMode = "map"
	ViewList ViewMode = "list"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(s); m {
	case ViewMap, ViewList:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewMode, s)
}

type ScreenState string

const (
	// StateLoading covers the time before the first coordinate arrives.
	StateLoading  ScreenState = "loading"
	StateReady    ScreenState = "ready"
	StateDisabled ScreenState = "disabled"
)

// Frame is what a single presentation (map or list) is asked to render.
type Frame struct {
	SessionID  string        `json:"session_id"`
	CustomerID string        `json:"customer_id"`
	Mode       ViewMode      `json:"mode"`
	Visible    bool          `json:"visible"`
	State      ScreenState   `json:"state"`
	Radius     RadiusBand    `json:"radius"`
	Groups     []RadiusGroup `json:"groups"`
	Error      string        `json:"error,omitempty"`
	Version    uint64        `json:"version"`
	RenderedAt time.Time     `json:"rendered_at"`
}

// View is a point-in-time snapshot of a screen session.
type View struct {
	SessionID     string              `json:"session_id"`
	CustomerID    string              `json:"customer_id"`
	Mode          ViewMode            `json:"view_mode"`
	State         ScreenState         `json:"state"`
	Authorization AuthorizationStatus `json:"authorization"`
	Radius        RadiusBand          `json:"radius"`
	Location      *Coordinate         `json:"location,omitempty"`
	Groups        []RadiusGroup       `json:"groups"`
	Error         string              `json:"error,omitempty"`
	Version       uint64              `json:"version"`
}
