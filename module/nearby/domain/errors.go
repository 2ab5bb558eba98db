package domain

import "errors"

var (
	ErrPermissionDenied     = errors.New("location permission denied")
	ErrDirectoryFetchFailed = errors.New("merchant directory fetch failed")
	ErrSessionNotFound      = errors.New("session not found")
	ErrTrackerActive        = errors.New("location tracker already active")
	ErrSynchronizerStopped  = errors.New("view synchronizer stopped")
	ErrInvalidRadius        = errors.New("invalid radius")
	ErrInvalidViewMode      = errors.New("invalid view mode")
	ErrInvalidCoordinate    = errors.New("invalid coordinate")
)
